package models

// MemoryRecord is a minted memory persisted for the gallery. It is created
// once after a successful deploy and never updated.
type MemoryRecord struct {
	ID          string `json:"id"`
	Image       string `json:"image"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	CoinAddress string `json:"coinAddress"`
	ExplorerURL string `json:"explorerUrl"`
	// Timestamp is Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// RecordStats summarises the record store.
type RecordStats struct {
	Total        int            `json:"total"`
	UniqueOwners int            `json:"uniqueOwners"`
	Recent       []MemoryRecord `json:"recent"`
}
