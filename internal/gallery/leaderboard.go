package gallery

import (
	"sort"
	"strings"
	"sync"
	"time"

	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

const (
	// MinTip is the smallest accepted tip amount.
	MinTip = 0.0001

	TopTippers    = 5
	ActivityLimit = 10
)

type Tip struct {
	Address     string
	Amount      float64
	CoinAddress string
	MemoryTitle string
}

type tipperTotal struct {
	address string
	total   float64
}

// Leaderboard accumulates tip totals per address and keeps a short feed of
// recent tips. Nothing is persisted.
type Leaderboard struct {
	mu       sync.Mutex
	totals   []tipperTotal // first-tip order
	index    map[string]int
	activity []models.Activity // newest first
	now      func() time.Time
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		index: make(map[string]int),
		now:   time.Now,
	}
}

func (l *Leaderboard) Tip(tip Tip) error {
	address := strings.TrimSpace(tip.Address)
	if address == "" {
		return apperr.Validation("address is required")
	}
	if tip.Amount < MinTip {
		return apperr.Validation("Tip amount must be at least 0.0001")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[address]; ok {
		l.totals[i].total += tip.Amount
	} else {
		l.index[address] = len(l.totals)
		l.totals = append(l.totals, tipperTotal{address: address, total: tip.Amount})
	}

	entry := models.Activity{
		Address:     address,
		Amount:      tip.Amount,
		CoinAddress: tip.CoinAddress,
		Memory:      tip.MemoryTitle,
		Time:        l.now().UnixMilli(),
	}
	l.activity = append([]models.Activity{entry}, l.activity...)
	if len(l.activity) > ActivityLimit {
		l.activity = l.activity[:ActivityLimit]
	}
	return nil
}

// Top returns at most TopTippers entries by descending total. Equal totals
// keep the order in which the addresses first tipped.
func (l *Leaderboard) Top() []models.TipEntry {
	l.mu.Lock()
	sorted := append([]tipperTotal(nil), l.totals...)
	l.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].total > sorted[j].total
	})
	if len(sorted) > TopTippers {
		sorted = sorted[:TopTippers]
	}

	out := make([]models.TipEntry, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, models.TipEntry{Address: t.address, Total: t.total})
	}
	return out
}

// TotalFor is the cumulative amount tipped by address.
func (l *Leaderboard) TotalFor(address string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, ok := l.index[address]; ok {
		return l.totals[i].total
	}
	return 0
}

func (l *Leaderboard) Activity() []models.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Activity{}, l.activity...)
}
