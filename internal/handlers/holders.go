package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
	"rewind-backend/internal/solana"
)

const maxHolderLimit = 100

// HolderLister reads a coin's holders from the chain.
type HolderLister interface {
	TopHolders(ctx context.Context, mint string, limit int) (*solana.Holders, error)
}

type HoldersHandler struct {
	holders HolderLister
}

func NewHoldersHandler(holders HolderLister) *HoldersHandler {
	return &HoldersHandler{holders: holders}
}

// TopHolders godoc
// @Summary     Top holders of a minted memory's coin
// @Tags        gallery
// @Produce     json
// @Param       address path  string true  "Coin address"
// @Param       limit   query int    false "Maximum holders to return (default 10, max 100)"
// @Success     200 {object} models.HoldersResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /gallery/holders/{address} [get]
func (h *HoldersHandler) TopHolders(c *gin.Context) {
	address := strings.TrimSpace(c.Param("address"))
	if !solana.IsAddress(address) {
		respondError(c, apperr.Validation("address is not a valid coin address"))
		return
	}

	limit := solana.DefaultHolderLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHolderLimit {
			respondError(c, apperr.Validation("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	res, err := h.holders.TopHolders(c.Request.Context(), address, limit)
	if err != nil {
		respondError(c, apperr.Collaborator(apperr.CodeHoldersFailed, "Failed to fetch coin holders", err))
		return
	}

	entries := make([]models.HolderEntry, 0, len(res.Holders))
	for _, holder := range res.Holders {
		entries = append(entries, models.HolderEntry{Address: holder.Owner, Balance: holder.Amount})
	}
	c.JSON(http.StatusOK, models.HoldersResponse{
		CoinAddress: res.Mint,
		Supply:      res.Supply,
		Decimals:    res.Decimals,
		Holders:     entries,
	})
}
