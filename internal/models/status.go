package models

// PublishState is the publish pipeline's position. Transitions only move
// forward, except success and error which return to idle on dismissal.
type PublishState string

const (
	PublishIdle      PublishState = "idle"
	PublishUploading PublishState = "uploading"
	PublishMinting   PublishState = "minting"
	PublishSuccess   PublishState = "success"
	PublishError     PublishState = "error"
)

// Terminal reports whether the state waits for dismissal.
func (s PublishState) Terminal() bool {
	return s == PublishSuccess || s == PublishError
}

type PublishResult struct {
	CoinAddress string `json:"coinAddress"`
	ExplorerURL string `json:"explorerUrl"`
	Txn         string `json:"txn"`
	CID         string `json:"cid"`
	ImageCID    string `json:"imageCid"`
	// ImageURL and MetadataURL are the pinned documents on the HTTP gateway.
	ImageURL    string `json:"imageUrl,omitempty"`
	MetadataURL string `json:"metadataUrl,omitempty"`
	MirrorURL   string `json:"mirrorUrl,omitempty"`
	RecordID    string `json:"recordId,omitempty"`
}

type PublishStatus struct {
	State   PublishState   `json:"state"`
	Message string         `json:"message"`
	Result  *PublishResult `json:"result,omitempty"`
}
