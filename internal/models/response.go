package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type GenerateImageResponse struct {
	// Image is base64 without the data URI prefix.
	Image    string `json:"image"`
	MIMEType string `json:"mimeType"`
}

type ResolveLinkResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type ContentUploadResponse struct {
	CID      string `json:"cid"`
	ImageCID string `json:"imageCid"`
}

type CoinDeployResponse struct {
	Success     bool   `json:"success"`
	Address     string `json:"address"`
	Txn         string `json:"txn"`
	ExplorerURL string `json:"explorerUrl"`
}

type RecordsResponse struct {
	Records []MemoryRecord `json:"records"`
}

type RecordResponse struct {
	Record   MemoryRecord `json:"record"`
	ShareURL string       `json:"shareUrl"`
}

type CreateRecordResponse struct {
	Success bool         `json:"success"`
	Record  MemoryRecord `json:"record"`
}

type TipEntry struct {
	Address string  `json:"address"`
	Total   float64 `json:"total"`
}

type Activity struct {
	Address     string  `json:"address"`
	Amount      float64 `json:"amount"`
	CoinAddress string  `json:"coinAddress"`
	Memory      string  `json:"memory"`
	Time        int64   `json:"time"`
}

type LeaderboardResponse struct {
	Tippers  []TipEntry `json:"tippers"`
	Activity []Activity `json:"activity"`
	Badges   []string   `json:"badges"`
}

type CommentsResponse struct {
	CoinAddress string   `json:"coinAddress"`
	Comments    []string `json:"comments"`
}

type TipResponse struct {
	Success bool `json:"success"`
	// Total is the tipper's running total after this tip.
	Total    float64 `json:"total"`
	ShareURL string  `json:"shareUrl"`
}

type HolderEntry struct {
	Address string `json:"address"`
	// Balance is in base units; divide by 10^decimals for display.
	Balance uint64 `json:"balance"`
}

type HoldersResponse struct {
	CoinAddress string        `json:"coinAddress"`
	Supply      uint64        `json:"supply"`
	Decimals    uint8         `json:"decimals"`
	Holders     []HolderEntry `json:"holders"`
}
