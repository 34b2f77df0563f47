// Package gallery holds the in-memory social features around minted
// memories: tip leaderboard, activity feed, battles, comments and share links.
// All state lives on a Gallery value and is lost on restart.
package gallery

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

type RecordSource interface {
	List(ctx context.Context, owner string) ([]models.MemoryRecord, error)
	FindByCoin(ctx context.Context, coinAddress string) (models.MemoryRecord, error)
}

type Gallery struct {
	Leaderboard *Leaderboard
	Arena       *Arena
	Comments    *Comments

	records RecordSource
	baseURL string
}

func New(records RecordSource, baseURL string, battleDuration time.Duration) *Gallery {
	return &Gallery{
		Leaderboard: NewLeaderboard(),
		Arena:       NewArena(battleDuration),
		Comments:    NewComments(),
		records:     records,
		baseURL:     baseURL,
	}
}

// Tip records a tip against a minted memory and returns a share link.
func (g *Gallery) Tip(ctx context.Context, address string, amount float64, coinAddress string) (string, error) {
	rec, err := g.records.FindByCoin(ctx, coinAddress)
	if err != nil {
		return "", err
	}
	if err := g.Leaderboard.Tip(Tip{
		Address:     address,
		Amount:      amount,
		CoinAddress: coinAddress,
		MemoryTitle: rec.Title,
	}); err != nil {
		return "", err
	}
	return TipShareURL(amount, rec), nil
}

// StartBattle opens a battle between two random minted memories.
func (g *Gallery) StartBattle(ctx context.Context) (Battle, error) {
	all, err := g.records.List(ctx, "")
	if err != nil {
		return Battle{}, apperr.From(err)
	}
	return g.Arena.Start(all)
}

// Surprise picks a random minted memory to tip.
func (g *Gallery) Surprise(ctx context.Context) (models.MemoryRecord, error) {
	all, err := g.records.List(ctx, "")
	if err != nil {
		return models.MemoryRecord{}, apperr.From(err)
	}
	if len(all) == 0 {
		return models.MemoryRecord{}, apperr.NotFound("no memories have been minted yet")
	}
	return all[rand.IntN(len(all))], nil
}

// Record looks up a minted memory by coin address.
func (g *Gallery) Record(ctx context.Context, coinAddress string) (models.MemoryRecord, error) {
	return g.records.FindByCoin(ctx, coinAddress)
}

func (g *Gallery) Board() models.LeaderboardResponse {
	badges := g.Arena.Badges()
	sort.Strings(badges)
	return models.LeaderboardResponse{
		Tippers:  g.Leaderboard.Top(),
		Activity: g.Leaderboard.Activity(),
		Badges:   badges,
	}
}

func (g *Gallery) ShareURL(rec models.MemoryRecord) string {
	return ShareURL(g.baseURL, rec)
}

func (g *Gallery) FrameURL(coinAddress string) string {
	return FrameURL(g.baseURL, coinAddress)
}

func (g *Gallery) Close() {
	g.Arena.Close()
}
