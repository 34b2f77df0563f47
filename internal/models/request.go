package models

type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required,notblank" example:"sunset over the bay"`
}

type ResolveLinkRequest struct {
	// MemoryInput is a post URL on one of the allowed social hosts.
	MemoryInput string `json:"memoryInput" binding:"required,notblank" example:"https://x.com/user/status/1234567890"`
}

type ContentUploadRequest struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Symbol      string `json:"symbol" binding:"required,notblank"`
	// Image must be a data URI (data:image/...;base64,...).
	Image      string            `json:"image" binding:"required,notblank"`
	Properties map[string]string `json:"properties,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type CoinDeployRequest struct {
	Name   string `json:"name" binding:"required,notblank"`
	Symbol string `json:"symbol" binding:"required,notblank"`
	CID    string `json:"cid" binding:"required,notblank" example:"ipfs://bafy..."`
	// PayoutRecipient defaults to the authenticated wallet, then to the
	// server's mint authority.
	PayoutRecipient string `json:"payoutRecipient,omitempty"`
}

type CreateRecordRequest struct {
	Image       string `json:"image" binding:"required,notblank"`
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	Owner       string `json:"owner" binding:"required,notblank"`
	CoinAddress string `json:"coinAddress" binding:"required,notblank"`
	ExplorerURL string `json:"explorerUrl" binding:"required,notblank"`
}

type CaptureRequest struct {
	// Kind is one of "url", "file" or "prompt". File captures use
	// multipart/form-data with a "file" field instead.
	Kind  string `json:"kind" binding:"required,oneof=url prompt"`
	Input string `json:"input" binding:"required,notblank"`
}

type SubmitRequest struct {
	// Owner is the connected wallet address. Ignored when the request
	// carries a wallet token.
	Owner string `json:"owner"`
}

type TipRequest struct {
	Address     string  `json:"address" binding:"required,notblank"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	CoinAddress string  `json:"coinAddress" binding:"required,notblank"`
	MemoryTitle string  `json:"memoryTitle"`
}

type VoteRequest struct {
	CoinAddress string `json:"coinAddress" binding:"required,notblank"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}
