package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/imagen"
	"rewind-backend/internal/models"
	"rewind-backend/internal/resolver"
)

type ImageCapturer interface {
	GenerateImage(ctx context.Context, prompt string) (*imagen.Image, error)
	ResolveLink(ctx context.Context, rawURL string) (*resolver.Post, error)
}

// ImagesHandler exposes the capture collaborators directly, for clients that
// drive the flow themselves instead of through a session.
type ImagesHandler struct {
	capturer ImageCapturer
}

func NewImagesHandler(capturer ImageCapturer) *ImagesHandler {
	return &ImagesHandler{capturer: capturer}
}

// GenerateImage godoc
// @Summary     Generate an image from a prompt
// @Tags        capture
// @Accept      json
// @Produce     json
// @Param       request body models.GenerateImageRequest true "Prompt"
// @Success     200 {object} models.GenerateImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /image-generation [post]
func (h *ImagesHandler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	img, err := h.capturer.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GenerateImageResponse{
		Image:    base64.StdEncoding.EncodeToString(img.Data),
		MIMEType: img.MIMEType,
	})
}

// ResolveLink godoc
// @Summary     Resolve a social post into a preview
// @Tags        capture
// @Accept      json
// @Produce     json
// @Param       request body models.ResolveLinkRequest true "Post URL"
// @Success     200 {object} models.ResolveLinkResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /social-link-resolution [post]
func (h *ImagesHandler) ResolveLink(c *gin.Context) {
	var req models.ResolveLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	post, err := h.capturer.ResolveLink(c.Request.Context(), req.MemoryInput)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ResolveLinkResponse{
		Title:       post.Title,
		Description: post.Description,
		ImageURL:    post.ImageURL,
	})
}
