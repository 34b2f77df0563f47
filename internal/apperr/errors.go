// Package apperr defines the error kinds surfaced to API callers.
//
// Every stage of the capture and publish flow returns (value, error) where a
// non-nil error is an *Error. Handlers convert it to a response in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// KindValidation means required input was missing or malformed. No
	// collaborator was called.
	KindValidation Kind = "ValidationError"
	// KindUnsupportedInput means the input is well formed but not accepted,
	// e.g. a URL on a host outside the allow-list.
	KindUnsupportedInput Kind = "UnsupportedInputError"
	// KindCollaborator means a downstream HTTP or SDK call failed.
	KindCollaborator Kind = "CollaboratorError"
	// KindNotFound means the addressed resource does not exist.
	KindNotFound Kind = "NotFound"
)

// Stage-specific codes.
const (
	CodeUnsupportedSource = "UnsupportedSource"
	CodeResolutionFailed  = "ResolutionFailed"
	CodeReadError         = "ReadError"
	CodeGenerationFailed  = "GenerationFailed"
	CodeDownloadFailed    = "DownloadFailed"
	CodeUploadFailed      = "UploadFailed"
	CodeMintFailed        = "MintFailed"
	CodePersistFailed     = "PersistFailed"
	CodeInvalidState      = "InvalidState"
	CodeHoldersFailed     = "HoldersFailed"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindUnsupportedInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidState, Message: message}
}

func Unsupported(code, message string) *Error {
	return &Error{Kind: KindUnsupportedInput, Code: code, Message: message}
}

func Collaborator(code, message string, err error) *Error {
	return &Error{Kind: KindCollaborator, Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// From returns err as an *Error, wrapping anything else as a collaborator
// failure so callers can treat all errors uniformly.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindCollaborator, Message: err.Error(), Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Detail is the user-facing message: the collaborator's message verbatim when
// there is one.
func (e *Error) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
