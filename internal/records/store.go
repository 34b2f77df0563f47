// Package records persists minted memories for the gallery. Records are
// append-only: there is no update or delete path.
package records

import (
	"context"
	"sort"
	"strings"

	"rewind-backend/internal/models"
)

// RecentLimit is the number of records returned by Stats.
const RecentLimit = 5

type Store interface {
	// Init prepares the backing storage. It must be called once before use.
	Init(ctx context.Context) error
	// Append assigns an ID and timestamp when missing and stores rec.
	Append(ctx context.Context, rec models.MemoryRecord) (models.MemoryRecord, error)
	// List returns records whose owner matches case-insensitively, newest
	// first. An empty owner lists everything.
	List(ctx context.Context, owner string) ([]models.MemoryRecord, error)
	Stats(ctx context.Context) (models.RecordStats, error)
	FindByCoin(ctx context.Context, coinAddress string) (models.MemoryRecord, error)
	Close() error
}

func filterByOwner(all []models.MemoryRecord, owner string) []models.MemoryRecord {
	owner = strings.TrimSpace(owner)
	out := make([]models.MemoryRecord, 0, len(all))
	for _, rec := range all {
		if owner == "" || strings.EqualFold(rec.Owner, owner) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// statsOf computes stats over records in append order.
func statsOf(all []models.MemoryRecord) models.RecordStats {
	owners := make(map[string]struct{})
	for _, rec := range all {
		owner := strings.ToLower(strings.TrimSpace(rec.Owner))
		if owner == "" {
			continue
		}
		owners[owner] = struct{}{}
	}

	recent := make([]models.MemoryRecord, 0, RecentLimit)
	for i := len(all) - 1; i >= 0 && len(recent) < RecentLimit; i-- {
		recent = append(recent, all[i])
	}

	return models.RecordStats{
		Total:        len(all),
		UniqueOwners: len(owners),
		Recent:       recent,
	}
}
