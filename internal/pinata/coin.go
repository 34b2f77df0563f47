package pinata

import (
	"context"
	"strings"

	"rewind-backend/internal/apperr"
	"rewind-backend/internal/media"
)

const ipfsScheme = "ipfs://"

// CoinContent is the image and descriptive fields of a coin to pin.
type CoinContent struct {
	Name        string
	Description string
	Symbol      string
	Image       *media.DataURI
	Properties  map[string]string
	Metadata    map[string]string
}

// CoinMetadata is the JSON document the coin's URI points at.
type CoinMetadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Symbol      string            `json:"symbol"`
	Image       string            `json:"image"`
	Properties  map[string]string `json:"properties"`
	Metadata    map[string]string `json:"metadata"`
}

type PinnedCoin struct {
	// CID is the ipfs:// URI of the metadata document.
	CID      string
	ImageCID string
	Metadata CoinMetadata
}

// PinCoin pins the image, then a metadata document referencing it. Either
// failure aborts; nothing already pinned is removed.
func (c *Client) PinCoin(ctx context.Context, content CoinContent) (*PinnedCoin, error) {
	if content.Image == nil || len(content.Image.Data) == 0 {
		return nil, apperr.Validation("image is required")
	}

	filename := "coin-image" + media.Extension(content.Image.MIMEType)
	imageCID, err := c.PinFile(ctx, filename, content.Image.MIMEType, content.Image.Data)
	if err != nil {
		return nil, apperr.Collaborator(apperr.CodeUploadFailed, "Failed to upload image to IPFS", err)
	}

	meta := CoinMetadata{
		Name:        content.Name,
		Description: content.Description,
		Symbol:      content.Symbol,
		Image:       ipfsScheme + imageCID,
		Properties:  nonNil(content.Properties),
		Metadata:    nonNil(content.Metadata),
	}
	metaCID, err := c.PinJSON(ctx, content.Symbol+"-metadata.json", meta)
	if err != nil {
		return nil, apperr.Collaborator(apperr.CodeUploadFailed, "Failed to upload metadata to IPFS", err)
	}

	return &PinnedCoin{
		CID:      ipfsScheme + metaCID,
		ImageCID: imageCID,
		Metadata: meta,
	}, nil
}

// NormalizeURI returns cid as an ipfs:// URI.
func NormalizeURI(cid string) string {
	cid = strings.TrimSpace(cid)
	if strings.HasPrefix(cid, ipfsScheme) {
		return cid
	}
	return ipfsScheme + cid
}

// GatewayURL rewrites an ipfs:// URI onto an HTTP gateway.
func GatewayURL(gateway, uri string) string {
	return strings.TrimSuffix(gateway, "/") + "/" + strings.TrimPrefix(NormalizeURI(uri), ipfsScheme)
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
