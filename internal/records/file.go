package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

type document struct {
	Memories []models.MemoryRecord `json:"memories"`
}

// FileStore keeps every record in a single JSON document. Each call re-reads
// the file. The mutex serialises writers inside this process only; two
// processes appending at once can still lose one append.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat records file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create records directory: %w", err)
		}
	}
	return s.write(document{Memories: []models.MemoryRecord{}})
}

func (s *FileStore) Append(ctx context.Context, rec models.MemoryRecord) (models.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.MemoryRecord{}, err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = s.now().UnixMilli()
	}
	doc.Memories = append(doc.Memories, rec)

	if err := s.write(doc); err != nil {
		return models.MemoryRecord{}, err
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context, owner string) ([]models.MemoryRecord, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return filterByOwner(doc.Memories, owner), nil
}

func (s *FileStore) Stats(ctx context.Context) (models.RecordStats, error) {
	doc, err := s.read()
	if err != nil {
		return models.RecordStats{}, err
	}
	return statsOf(doc.Memories), nil
}

func (s *FileStore) FindByCoin(ctx context.Context, coinAddress string) (models.MemoryRecord, error) {
	doc, err := s.read()
	if err != nil {
		return models.MemoryRecord{}, err
	}
	for _, rec := range doc.Memories {
		if rec.CoinAddress == coinAddress {
			return rec, nil
		}
	}
	return models.MemoryRecord{}, apperr.NotFound("no memory minted as coin " + coinAddress)
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return document{}, fmt.Errorf("failed to read records file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode records file: %w", err)
	}
	if doc.Memories == nil {
		doc.Memories = []models.MemoryRecord{}
	}
	return doc, nil
}

// write replaces the file via a temp file and rename so readers never see a
// partial document.
func (s *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".records-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace records file: %w", err)
	}
	return nil
}
