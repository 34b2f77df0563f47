package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/media"
	"rewind-backend/internal/middleware"
	"rewind-backend/internal/models"
	"rewind-backend/internal/pinata"
	"rewind-backend/internal/solana"
)

// CoinPublisher is the part of the publish service exposed as single steps.
type CoinPublisher interface {
	Upload(ctx context.Context, content pinata.CoinContent) (*pinata.PinnedCoin, error)
	Mint(ctx context.Context, params solana.DeployParams) (*solana.DeployResult, error)
}

type UploadHandler struct {
	publisher CoinPublisher
}

func NewUploadHandler(publisher CoinPublisher) *UploadHandler {
	return &UploadHandler{publisher: publisher}
}

// Upload godoc
// @Summary     Pin coin content to IPFS
// @Description Pins the image, then a metadata document referencing it, and
// @Description returns the metadata URI.
// @Tags        publish
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ContentUploadRequest true "Coin content"
// @Success     200 {object} models.ContentUploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /content-upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	var req models.ContentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if !media.IsImageDataURI(req.Image) {
		respondError(c, apperr.Validation("image must be an image data URI"))
		return
	}
	image, err := media.ParseDataURI(req.Image)
	if err != nil {
		respondError(c, apperr.Validation("image is not a valid data URI: "+err.Error()))
		return
	}

	pinned, err := h.publisher.Upload(c.Request.Context(), pinata.CoinContent{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Symbol:      strings.TrimSpace(req.Symbol),
		Image:       image,
		Properties:  req.Properties,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ContentUploadResponse{
		CID:      pinned.CID,
		ImageCID: pinned.ImageCID,
	})
}

type CoinsHandler struct {
	publisher CoinPublisher
}

func NewCoinsHandler(publisher CoinPublisher) *CoinsHandler {
	return &CoinsHandler{publisher: publisher}
}

// Deploy godoc
// @Summary     Deploy a coin
// @Description Creates the token mint with on-chain metadata pointing at cid
// @Description and mints the initial supply to the payout recipient. The
// @Description recipient is the authenticated wallet, then payoutRecipient,
// @Description then the server's mint authority.
// @Tags        publish
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CoinDeployRequest true "Coin"
// @Success     200 {object} models.CoinDeployResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /coin-deploy [post]
func (h *CoinsHandler) Deploy(c *gin.Context) {
	var req models.CoinDeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	recipient := strings.TrimSpace(req.PayoutRecipient)
	if wallet, ok := middleware.Wallet(c); ok {
		recipient = wallet
	}
	if recipient != "" && !solana.IsAddress(recipient) {
		respondError(c, apperr.Validation("payoutRecipient is not a valid address"))
		return
	}

	deployed, err := h.publisher.Mint(c.Request.Context(), solana.DeployParams{
		Name:            strings.TrimSpace(req.Name),
		Symbol:          strings.TrimSpace(req.Symbol),
		URI:             strings.TrimSpace(req.CID),
		PayoutRecipient: recipient,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CoinDeployResponse{
		Success:     true,
		Address:     deployed.Address,
		Txn:         deployed.Txn,
		ExplorerURL: deployed.ExplorerURL,
	})
}
