package gallery

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

// DefaultBattleDuration is the voting window of a battle.
const DefaultBattleDuration = 5 * time.Minute

const maxBattles = 100

type Contender struct {
	Record models.MemoryRecord `json:"record"`
	Votes  int                 `json:"votes"`
}

// Battle is a snapshot of a timed vote between two records.
type Battle struct {
	ID         string       `json:"id"`
	Contenders [2]Contender `json:"contenders"`
	EndsAt     time.Time    `json:"endsAt"`
	Ended      bool         `json:"ended"`
	// Winner is the winning coin address, empty for a tie or while open.
	Winner string `json:"winner,omitempty"`
}

type battle struct {
	Battle
	timer *time.Timer
}

// Arena runs battles. Each battle closes when its timer fires or End is
// called, whichever comes first. Close stops all pending timers.
type Arena struct {
	duration time.Duration
	now      func() time.Time
	intn     func(n int) int

	mu      sync.Mutex
	battles map[string]*battle
	order   []string
	badges  map[string]bool
	closed  bool
}

func NewArena(duration time.Duration) *Arena {
	if duration <= 0 {
		duration = DefaultBattleDuration
	}
	return &Arena{
		duration: duration,
		now:      time.Now,
		intn:     rand.IntN,
		battles:  make(map[string]*battle),
		badges:   make(map[string]bool),
	}
}

// Start picks two different coins at random from records and opens voting.
func (a *Arena) Start(records []models.MemoryRecord) (Battle, error) {
	candidates := uniqueByCoin(records)
	if len(candidates) < 2 {
		return Battle{}, apperr.Validation("at least two minted memories are needed for a battle")
	}

	i := a.intn(len(candidates))
	j := a.intn(len(candidates) - 1)
	if j >= i {
		j++
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return Battle{}, apperr.InvalidState("the arena is closed")
	}

	b := &battle{Battle: Battle{
		ID: uuid.NewString(),
		Contenders: [2]Contender{
			{Record: candidates[i]},
			{Record: candidates[j]},
		},
		EndsAt: a.now().Add(a.duration),
	}}
	id := b.ID
	b.timer = time.AfterFunc(a.duration, func() {
		_, _ = a.End(id)
	})

	a.battles[id] = b
	a.order = append(a.order, id)
	a.pruneLocked()
	return b.Battle, nil
}

func (a *Arena) Get(id string) (Battle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.battles[id]
	if !ok {
		return Battle{}, apperr.NotFound("battle not found")
	}
	return b.Battle, nil
}

// Vote adds one vote for coinAddress while the battle is open.
func (a *Arena) Vote(id, coinAddress string) (Battle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.battles[id]
	if !ok {
		return Battle{}, apperr.NotFound("battle not found")
	}
	if b.Ended {
		return Battle{}, apperr.InvalidState("the battle has ended")
	}
	for i := range b.Contenders {
		if b.Contenders[i].Record.CoinAddress == coinAddress {
			b.Contenders[i].Votes++
			return b.Battle, nil
		}
	}
	return Battle{}, apperr.Validation("coin is not part of this battle")
}

// End closes voting and declares the strictly higher vote count the winner.
// A tie has no winner. Ending an ended battle returns it unchanged.
func (a *Arena) End(id string) (Battle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.battles[id]
	if !ok {
		return Battle{}, apperr.NotFound("battle not found")
	}
	if b.Ended {
		return b.Battle, nil
	}

	b.timer.Stop()
	b.Ended = true
	b.Winner = winnerOf(b.Contenders)
	if b.Winner != "" {
		a.badges[b.Winner] = true
	}
	return b.Battle, nil
}

// Badges lists coin addresses that have won at least one battle.
func (a *Arena) Badges() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.badges))
	for coin := range a.badges {
		out = append(out, coin)
	}
	return out
}

func (a *Arena) HasBadge(coinAddress string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.badges[coinAddress]
}

func (a *Arena) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for _, b := range a.battles {
		b.timer.Stop()
	}
}

func (a *Arena) pruneLocked() {
	for len(a.order) > maxBattles {
		oldest := a.battles[a.order[0]]
		if oldest != nil && !oldest.Ended {
			return
		}
		delete(a.battles, a.order[0])
		a.order = a.order[1:]
	}
}

func winnerOf(c [2]Contender) string {
	switch {
	case c[0].Votes > c[1].Votes:
		return c[0].Record.CoinAddress
	case c[1].Votes > c[0].Votes:
		return c[1].Record.CoinAddress
	default:
		return ""
	}
}

func uniqueByCoin(records []models.MemoryRecord) []models.MemoryRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.MemoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.CoinAddress == "" || seen[rec.CoinAddress] {
			continue
		}
		seen[rec.CoinAddress] = true
		out = append(out, rec)
	}
	return out
}
