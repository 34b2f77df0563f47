package media

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// DataURI is a decoded data:<mime>;base64,<payload> value.
type DataURI struct {
	MIMEType string
	Data     []byte
}

func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

func IsImageDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// ParseDataURI decodes a base64 data URI. Only base64 payloads are accepted.
func ParseDataURI(s string) (*DataURI, error) {
	if !IsDataURI(s) {
		return nil, fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}
	meta := strings.TrimPrefix(header, "data:")
	mimeType, params, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		return nil, fmt.Errorf("could not determine MIME type")
	}
	if !strings.Contains(params, "base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return &DataURI{MIMEType: mimeType, Data: data}, nil
}

// EncodeDataURI encodes data with the given MIME type. An empty MIME type is
// sniffed from the content.
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DetectMIMEType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DetectMIMEType sniffs the content type, dropping any parameters.
func DetectMIMEType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Extension returns a file extension for an image MIME type.
func Extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
