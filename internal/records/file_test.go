package records

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "data", "db.json"))
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestFileStore_InitCreatesEmptyDocument(t *testing.T) {
	store := newTestFileStore(t)

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"memories": []}`, string(data))

	// Init on an existing file leaves it alone.
	_, err = store.Append(context.Background(), models.MemoryRecord{Title: "kept"})
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	all, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_ListFiltersByOwnerNewestFirst(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	input := []models.MemoryRecord{
		{Title: "a", Owner: "OwnerA", Timestamp: 100},
		{Title: "b", Owner: "ownerB", Timestamp: 300},
		{Title: "c", Owner: "ownera", Timestamp: 200},
		{Title: "d", Owner: "OWNERA", Timestamp: 400},
		{Title: "e", Owner: "", Timestamp: 500},
	}
	for _, rec := range input {
		_, err := store.Append(ctx, rec)
		require.NoError(t, err)
	}

	got, err := store.List(ctx, "ownerA")
	require.NoError(t, err)

	want := []models.MemoryRecord{
		{Title: "d", Owner: "OWNERA", Timestamp: 400},
		{Title: "c", Owner: "ownera", Timestamp: 200},
		{Title: "a", Owner: "OwnerA", Timestamp: 100},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(models.MemoryRecord{}, "ID")); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	everything, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everything, 5)
	assert.Equal(t, "e", everything[0].Title)
}

func TestFileStore_AppendAssignsIDAndTimestamp(t *testing.T) {
	store := newTestFileStore(t)
	store.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	rec, err := store.Append(context.Background(), models.MemoryRecord{Title: "Sunset", Owner: "o"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, int64(1_700_000_000_000), rec.Timestamp)

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Memories, 1)
	assert.Equal(t, rec, doc.Memories[0])
}

func TestFileStore_Stats(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	owners := []string{"Alice", "alice", "bob", " ", "carol", "BOB", "dave"}
	for i, owner := range owners {
		_, err := store.Append(ctx, models.MemoryRecord{Title: string(rune('a' + i)), Owner: owner, Timestamp: int64(i + 1)})
		require.NoError(t, err)
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 4, stats.UniqueOwners)
	require.Len(t, stats.Recent, RecentLimit)

	titles := make([]string, 0, len(stats.Recent))
	for _, rec := range stats.Recent {
		titles = append(titles, rec.Title)
	}
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, titles)
}

func TestFileStore_FindByCoin(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, models.MemoryRecord{Title: "Sunset", CoinAddress: "Coin111"})
	require.NoError(t, err)

	rec, err := store.FindByCoin(ctx, "Coin111")
	require.NoError(t, err)
	assert.Equal(t, "Sunset", rec.Title)

	_, err = store.FindByCoin(ctx, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestFileStore_ConcurrentAppendsInProcess(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(ctx, models.MemoryRecord{Owner: "o"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.List(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestFileStore_ReadErrorBeforeInit(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := store.List(context.Background(), "")
	assert.Error(t, err)
}
