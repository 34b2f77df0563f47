package imagen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrNoImage is returned when the model answered without an image part.
var ErrNoImage = errors.New("no image generated")

type modelsClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models modelsClient
	model  string
}

// Image is one generated image.
type Image struct {
	MIMEType string
	Data     []byte
	// Caption is any text the model returned alongside the image.
	Caption string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("new image client: missing api key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("new gemini client: models client is nil")
	}

	return &Client{models: client.Models, model: model}, nil
}

// NewClientWithModels wires a custom models client, used by tests.
func NewClientWithModels(models modelsClient, model string) *Client {
	return &Client{models: models, model: model}
}

// Generate asks the model for an image matching prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	return firstImage(resp)
}

func firstImage(resp *genai.GenerateContentResponse) (*Image, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoImage
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil, ErrNoImage
	}

	var caption []string
	var image *Image
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			caption = append(caption, part.Text)
		}
		if image == nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			image = &Image{MIMEType: mimeType, Data: part.InlineData.Data}
		}
	}
	if image == nil {
		return nil, ErrNoImage
	}
	image.Caption = strings.TrimSpace(strings.Join(caption, " "))
	return image, nil
}
