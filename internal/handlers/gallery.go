package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/metrics"
	"rewind-backend/internal/middleware"
	"rewind-backend/internal/models"
)

type GalleryHandler struct {
	gallery *gallery.Gallery
	metrics *metrics.Collector
}

func NewGalleryHandler(g *gallery.Gallery, collector *metrics.Collector) *GalleryHandler {
	return &GalleryHandler{gallery: g, metrics: collector}
}

// Leaderboard godoc
// @Summary     Top tippers, recent tips and battle badges
// @Tags        gallery
// @Produce     json
// @Success     200 {object} models.LeaderboardResponse
// @Router      /gallery/leaderboard [get]
func (h *GalleryHandler) Leaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.gallery.Board())
}

// Tip godoc
// @Summary     Tip a minted memory
// @Description The tipper is the authenticated wallet when a token is sent.
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.TipRequest true "Tip"
// @Success     200 {object} models.TipResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/tips [post]
func (h *GalleryHandler) Tip(c *gin.Context) {
	var req models.TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	address := strings.TrimSpace(req.Address)
	if wallet, ok := middleware.Wallet(c); ok {
		address = wallet
	}

	share, err := h.gallery.Tip(c.Request.Context(), address, req.Amount, strings.TrimSpace(req.CoinAddress))
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordTip()

	c.JSON(http.StatusOK, models.TipResponse{
		Success:  true,
		Total:    h.gallery.Leaderboard.TotalFor(address),
		ShareURL: share,
	})
}

// Surprise godoc
// @Summary     Pick a random minted memory to tip
// @Tags        gallery
// @Produce     json
// @Success     200 {object} models.RecordResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/surprise [get]
func (h *GalleryHandler) Surprise(c *gin.Context) {
	rec, err := h.gallery.Surprise(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RecordResponse{Record: rec, ShareURL: h.gallery.ShareURL(rec)})
}

// StartBattle godoc
// @Summary     Start a battle between two random memories
// @Tags        gallery
// @Produce     json
// @Security    Bearer
// @Success     201 {object} gallery.Battle
// @Failure     400 {object} models.ErrorResponse
// @Router      /gallery/battles [post]
func (h *GalleryHandler) StartBattle(c *gin.Context) {
	battle, err := h.gallery.StartBattle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, battle)
}

// GetBattle godoc
// @Summary     Get a battle
// @Tags        gallery
// @Produce     json
// @Param       battle_id path string true "Battle ID"
// @Success     200 {object} gallery.Battle
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/battles/{battle_id} [get]
func (h *GalleryHandler) GetBattle(c *gin.Context) {
	battle, err := h.gallery.Arena.Get(c.Param("battle_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, battle)
}

// Vote godoc
// @Summary     Vote in an open battle
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       battle_id path string true "Battle ID"
// @Param       request body models.VoteRequest true "Vote"
// @Success     200 {object} gallery.Battle
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/battles/{battle_id}/votes [post]
func (h *GalleryHandler) Vote(c *gin.Context) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	battle, err := h.gallery.Arena.Vote(c.Param("battle_id"), strings.TrimSpace(req.CoinAddress))
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordVote()
	c.JSON(http.StatusOK, battle)
}

// EndBattle godoc
// @Summary     Close voting early
// @Tags        gallery
// @Produce     json
// @Security    Bearer
// @Param       battle_id path string true "Battle ID"
// @Success     200 {object} gallery.Battle
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/battles/{battle_id}/end [post]
func (h *GalleryHandler) EndBattle(c *gin.Context) {
	battle, err := h.gallery.Arena.End(c.Param("battle_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, battle)
}

// ListComments godoc
// @Summary     Comments on a memory
// @Tags        gallery
// @Produce     json
// @Param       address path string true "Coin address"
// @Success     200 {object} models.CommentsResponse
// @Router      /gallery/comments/{address} [get]
func (h *GalleryHandler) ListComments(c *gin.Context) {
	coin := c.Param("address")
	c.JSON(http.StatusOK, models.CommentsResponse{
		CoinAddress: coin,
		Comments:    h.gallery.Comments.List(coin),
	})
}

// AddComment godoc
// @Summary     Comment on a memory
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       address path string true "Coin address"
// @Param       request body models.CommentRequest true "Comment"
// @Success     201 {object} models.CommentsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /gallery/comments/{address} [post]
func (h *GalleryHandler) AddComment(c *gin.Context) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	coin := c.Param("address")
	if _, err := h.gallery.Record(c.Request.Context(), coin); err != nil {
		respondError(c, err)
		return
	}
	thread, err := h.gallery.Comments.Add(coin, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.CommentsResponse{CoinAddress: coin, Comments: thread})
}
