package workflow

import (
	"context"
	"strings"

	"rewind-backend/internal/apperr"
	"rewind-backend/internal/imagen"
	"rewind-backend/internal/media"
	"rewind-backend/internal/resolver"
)

const maxFileSize = 10 << 20

type SourceKind string

const (
	SourceURL    SourceKind = "url"
	SourceFile   SourceKind = "file"
	SourcePrompt SourceKind = "prompt"
)

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*imagen.Image, error)
}

type LinkResolver interface {
	Resolve(ctx context.Context, rawURL string) (*resolver.Post, error)
}

// Draft is the preview produced by the capture stage.
type Draft struct {
	SourceKind  SourceKind `json:"sourceKind"`
	RawInput    string     `json:"rawInput"`
	Image       string     `json:"previewImage"`
	Title       string     `json:"previewTitle"`
	Description string     `json:"previewDescription"`
}

type CaptureInput struct {
	Kind     SourceKind
	Input    string
	FileName string
	FileData []byte
}

// Capturer turns a pasted link, an uploaded file or a prompt into a Draft.
// Nothing is retried; callers re-submit.
type Capturer struct {
	generator ImageGenerator
	resolver  LinkResolver
}

func NewCapturer(generator ImageGenerator, resolver LinkResolver) *Capturer {
	return &Capturer{generator: generator, resolver: resolver}
}

func (c *Capturer) Capture(ctx context.Context, in CaptureInput) (*Draft, error) {
	switch in.Kind {
	case SourceURL:
		return c.captureURL(ctx, in.Input)
	case SourceFile:
		return captureFile(in.FileName, in.FileData)
	case SourcePrompt:
		return c.capturePrompt(ctx, in.Input)
	default:
		return nil, apperr.Validation("kind must be one of url, file or prompt")
	}
}

// GenerateImage asks the image generator for an image matching prompt.
func (c *Capturer) GenerateImage(ctx context.Context, prompt string) (*imagen.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.Validation("prompt is required")
	}
	image, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, apperr.Collaborator(apperr.CodeGenerationFailed, "Failed to generate image", err)
	}
	return image, nil
}

// ResolveLink resolves a social post URL to its media and author.
func (c *Capturer) ResolveLink(ctx context.Context, rawURL string) (*resolver.Post, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, apperr.Validation("memoryInput is required")
	}
	post, err := c.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, apperr.From(err)
	}
	return post, nil
}

func (c *Capturer) captureURL(ctx context.Context, rawURL string) (*Draft, error) {
	post, err := c.ResolveLink(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &Draft{
		SourceKind:  SourceURL,
		RawInput:    rawURL,
		Image:       post.ImageURL,
		Title:       post.Title,
		Description: post.Description,
	}, nil
}

func (c *Capturer) capturePrompt(ctx context.Context, prompt string) (*Draft, error) {
	prompt = strings.TrimSpace(prompt)
	image, err := c.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}
	description := prompt
	if image.Caption != "" {
		description = image.Caption
	}
	return &Draft{
		SourceKind:  SourcePrompt,
		RawInput:    prompt,
		Image:       media.EncodeDataURI(image.MIMEType, image.Data),
		Title:       prompt,
		Description: description,
	}, nil
}

func captureFile(name string, data []byte) (*Draft, error) {
	readErr := func(message string) error {
		return &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeReadError, Message: message}
	}
	switch {
	case len(data) == 0:
		return nil, readErr("uploaded file is empty")
	case len(data) > maxFileSize:
		return nil, readErr("uploaded file is larger than 10MB")
	}

	mimeType := media.DetectMIMEType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, readErr("uploaded file is not an image: " + mimeType)
	}

	title := strings.TrimSuffix(name, extOf(name))
	return &Draft{
		SourceKind: SourceFile,
		RawInput:   name,
		Image:      media.EncodeDataURI(mimeType, data),
		Title:      title,
	}, nil
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}
