package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/gallery"
	"rewind-backend/internal/models"
	"rewind-backend/internal/records"
)

type RecordsHandler struct {
	store   records.Store
	baseURL string
}

func NewRecordsHandler(store records.Store, baseURL string) *RecordsHandler {
	return &RecordsHandler{store: store, baseURL: baseURL}
}

// ListRecords godoc
// @Summary     List minted memories
// @Description Newest first. owner filters case-insensitively.
// @Tags        records
// @Produce     json
// @Param       owner query string false "Owner wallet address"
// @Success     200 {object} models.RecordsResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /records [get]
func (h *RecordsHandler) ListRecords(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), strings.TrimSpace(c.Query("owner")))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.MemoryRecord{}
	}
	c.JSON(http.StatusOK, models.RecordsResponse{Records: list})
}

// CreateRecord godoc
// @Summary     Save a minted memory
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateRecordRequest true "Record"
// @Success     201 {object} models.CreateRecordResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /records [post]
func (h *RecordsHandler) CreateRecord(c *gin.Context) {
	var req models.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	rec, err := h.store.Append(c.Request.Context(), models.MemoryRecord{
		Image:       req.Image,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Owner:       strings.TrimSpace(req.Owner),
		CoinAddress: strings.TrimSpace(req.CoinAddress),
		ExplorerURL: strings.TrimSpace(req.ExplorerURL),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateRecordResponse{Success: true, Record: rec})
}

// Stats godoc
// @Summary     Record store statistics
// @Tags        records
// @Produce     json
// @Success     200 {object} models.RecordStats
// @Failure     502 {object} models.ErrorResponse
// @Router      /records/stats [get]
func (h *RecordsHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if stats.Recent == nil {
		stats.Recent = []models.MemoryRecord{}
	}
	c.JSON(http.StatusOK, stats)
}

// GetRecord godoc
// @Summary     Get a minted memory by coin address
// @Tags        records
// @Produce     json
// @Param       address path string true "Coin address"
// @Success     200 {object} models.RecordResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /records/{address} [get]
func (h *RecordsHandler) GetRecord(c *gin.Context) {
	rec, err := h.store.FindByCoin(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RecordResponse{
		Record:   rec,
		ShareURL: gallery.ShareURL(h.baseURL, rec),
	})
}
