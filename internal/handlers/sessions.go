package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/middleware"
	"rewind-backend/internal/models"
	"rewind-backend/internal/workflow"
)

// One byte over the capture limit so oversized files are reported as such.
const maxCaptureBytes = 10<<20 + 1

type SessionsHandler struct {
	registry *workflow.Registry
}

func NewSessionsHandler(registry *workflow.Registry) *SessionsHandler {
	return &SessionsHandler{registry: registry}
}

// CreateSession godoc
// @Summary     Start a mint session
// @Tags        sessions
// @Produce     json
// @Success     201 {object} workflow.Snapshot
// @Router      /sessions [post]
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	session := h.registry.Create()
	c.JSON(http.StatusCreated, session.Snapshot())
}

// GetSession godoc
// @Summary     Get a mint session
// @Description Poll this while a submission runs to follow the publish status.
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} workflow.Snapshot
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [get]
func (h *SessionsHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// Capture godoc
// @Summary     Capture a memory
// @Description JSON {kind, input} for url and prompt captures, or
// @Description multipart/form-data with a "file" field for an image upload.
// @Tags        sessions
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Param       request body models.CaptureRequest false "URL or prompt capture"
// @Param       file formData file false "Image file"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/capture [post]
func (h *SessionsHandler) Capture(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	in, err := captureInput(c)
	if err != nil {
		respondError(c, err)
		return
	}

	snap, err := session.Capture(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func captureInput(c *gin.Context) (workflow.CaptureInput, error) {
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			return workflow.CaptureInput{}, apperr.Validation("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return workflow.CaptureInput{}, &apperr.Error{
				Kind: apperr.KindValidation, Code: apperr.CodeReadError,
				Message: "Failed to read file", Err: err,
			}
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxCaptureBytes))
		if err != nil {
			return workflow.CaptureInput{}, &apperr.Error{
				Kind: apperr.KindValidation, Code: apperr.CodeReadError,
				Message: "Failed to read file", Err: err,
			}
		}
		return workflow.CaptureInput{
			Kind:     workflow.SourceFile,
			FileName: fh.Filename,
			FileData: data,
		}, nil
	}

	var req models.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return workflow.CaptureInput{}, bindError(err)
	}
	return workflow.CaptureInput{
		Kind:  workflow.SourceKind(req.Kind),
		Input: strings.TrimSpace(req.Input),
	}, nil
}

// AcceptPreview godoc
// @Summary     Accept the preview and open the mint form
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/accept [post]
func (h *SessionsHandler) AcceptPreview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := session.AcceptPreview()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateForm godoc
// @Summary     Replace the mint form
// @Description Partial forms are accepted; required fields are checked on submit.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Param       request body models.MintForm true "Mint form"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/form [put]
func (h *SessionsHandler) UpdateForm(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var form models.MintForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, bindError(err))
		return
	}

	snap, err := session.UpdateForm(form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Submit godoc
// @Summary     Publish the mint form
// @Description Runs upload, mint and persist and returns once the status is
// @Description success or error. A pipeline failure is reported in the
// @Description returned status, not as an HTTP error.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID"
// @Param       request body models.SubmitRequest false "Owner"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/submit [post]
func (h *SessionsHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
	}
	owner := strings.TrimSpace(req.Owner)
	if wallet, ok := middleware.Wallet(c); ok {
		owner = wallet
	}

	snap, err := session.Submit(c.Request.Context(), owner)
	if err != nil && !snap.Status.State.Terminal() {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Dismiss godoc
// @Summary     Dismiss a finished publish
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/dismiss [post]
func (h *SessionsHandler) Dismiss(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := session.Dismiss()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Reset godoc
// @Summary     Start the session over
// @Tags        sessions
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} workflow.Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/reset [post]
func (h *SessionsHandler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := session.Reset()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionsHandler) session(c *gin.Context) (*workflow.Session, bool) {
	session, err := h.registry.Get(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}
