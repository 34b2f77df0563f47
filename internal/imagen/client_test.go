package imagen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGenerate_ReturnsFirstImage(t *testing.T) {
	fake := &fakeModels{resp: responseWithParts(
		&genai.Part{Text: "Here is your sunset."},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{4}}},
	)}
	client := NewClientWithModels(fake, "image-model")

	img, err := client.Generate(context.Background(), "  sunset ")
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, img.Data)
	assert.Equal(t, "Here is your sunset.", img.Caption)
	assert.Equal(t, "image-model", fake.model)
	assert.Equal(t, "sunset", fake.prompt)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, fake.config.ResponseModalities)
}

func TestGenerate_NoImage(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"text only", responseWithParts(&genai.Part{Text: "I cannot draw that"})},
		{"empty blob", responseWithParts(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClientWithModels(&fakeModels{resp: tt.resp}, "m")
			_, err := client.Generate(context.Background(), "sunset")
			assert.ErrorIs(t, err, ErrNoImage)
		})
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	client := NewClientWithModels(&fakeModels{err: errors.New("quota exceeded")}, "m")

	_, err := client.Generate(context.Background(), "sunset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	client := NewClientWithModels(&fakeModels{}, "m")
	_, err := client.Generate(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGenerate_DefaultsMIMEType(t *testing.T) {
	client := NewClientWithModels(&fakeModels{resp: responseWithParts(
		&genai.Part{InlineData: &genai.Blob{Data: []byte{9}}},
	)}, "m")

	img, err := client.Generate(context.Background(), "sunset")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}
