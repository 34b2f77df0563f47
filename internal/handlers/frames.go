package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/media"
)

const frameTemplateName = "frame"

var frameTemplate = template.Must(template.New(frameTemplateName).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="fc:frame" content="vNext">
<meta property="fc:frame:image" content="{{.ImageURL}}">
<meta property="fc:frame:image:aspect_ratio" content="1:1">
<meta property="fc:frame:button:1" content="View coin">
<meta property="fc:frame:button:1:action" content="link">
<meta property="fc:frame:button:1:target" content="{{.ExplorerURL}}">
{{- if .Winner}}
<meta property="fc:frame:button:2" content="Battle winner">
{{- end}}
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<img src="{{.ImageURL}}" alt="{{.Title}}">
</body>
</html>
`))

type frameData struct {
	Title       string
	Description string
	ImageURL    string
	ExplorerURL string
	Winner      bool
}

// FramesHandler serves the public Farcaster frame for a minted memory.
type FramesHandler struct {
	gallery *gallery.Gallery
}

func NewFramesHandler(g *gallery.Gallery) *FramesHandler {
	return &FramesHandler{gallery: g}
}

// Frame godoc
// @Summary     Farcaster frame page for a memory
// @Tags        frames
// @Produce     html
// @Param       address path string true "Coin address"
// @Success     200 {string} string "HTML"
// @Failure     404 {object} models.ErrorResponse
// @Router      /frames/{address} [get]
func (h *FramesHandler) Frame(c *gin.Context) {
	coin := c.Param("address")
	rec, err := h.gallery.Record(c.Request.Context(), coin)
	if err != nil {
		respondError(c, err)
		return
	}

	imageURL := rec.Image
	if !isHTTPURL(imageURL) {
		imageURL = h.gallery.FrameURL(coin) + "/image"
	}
	c.HTML(http.StatusOK, frameTemplateName, frameData{
		Title:       rec.Title,
		Description: rec.Description,
		ImageURL:    imageURL,
		ExplorerURL: rec.ExplorerURL,
		Winner:      h.gallery.Arena.HasBadge(coin),
	})
}

// FrameImage godoc
// @Summary     Image of a memory
// @Description Serves an inline image, or redirects to a remote one.
// @Tags        frames
// @Param       address path string true "Coin address"
// @Success     200 {file} binary
// @Success     302
// @Failure     404 {object} models.ErrorResponse
// @Router      /frames/{address}/image [get]
func (h *FramesHandler) FrameImage(c *gin.Context) {
	rec, err := h.gallery.Record(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	if isHTTPURL(rec.Image) {
		c.Redirect(http.StatusFound, rec.Image)
		return
	}
	img, err := media.ParseDataURI(rec.Image)
	if err != nil {
		respondError(c, apperr.NotFound("memory has no image"))
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
