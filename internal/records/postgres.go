package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

// PostgresStore keeps records in the memory_records table created by the
// database migrations. seq preserves append order for Stats.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, rec models.MemoryRecord) (models.MemoryRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = s.now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_records (id, image, title, description, owner, coin_address, explorer_url, timestamp_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.Image, rec.Title, rec.Description, rec.Owner, rec.CoinAddress, rec.ExplorerURL, rec.Timestamp)
	if err != nil {
		return models.MemoryRecord{}, fmt.Errorf("failed to insert record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, owner string) ([]models.MemoryRecord, error) {
	owner = strings.TrimSpace(owner)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image, title, description, owner, coin_address, explorer_url, timestamp_ms
		FROM memory_records
		WHERE $1 = '' OR lower(owner) = lower($1)
		ORDER BY timestamp_ms DESC, seq ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return scanRecords(rows)
}

func (s *PostgresStore) Stats(ctx context.Context) (models.RecordStats, error) {
	var stats models.RecordStats
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*),
		       count(DISTINCT lower(owner)) FILTER (WHERE btrim(owner) <> '')
		FROM memory_records
	`).Scan(&stats.Total, &stats.UniqueOwners)
	if err != nil {
		return models.RecordStats{}, fmt.Errorf("failed to count records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image, title, description, owner, coin_address, explorer_url, timestamp_ms
		FROM memory_records
		ORDER BY seq DESC
		LIMIT $1
	`, RecentLimit)
	if err != nil {
		return models.RecordStats{}, fmt.Errorf("failed to list recent records: %w", err)
	}
	stats.Recent, err = scanRecords(rows)
	if err != nil {
		return models.RecordStats{}, err
	}
	return stats, nil
}

func (s *PostgresStore) FindByCoin(ctx context.Context, coinAddress string) (models.MemoryRecord, error) {
	var rec models.MemoryRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, image, title, description, owner, coin_address, explorer_url, timestamp_ms
		FROM memory_records
		WHERE coin_address = $1
		ORDER BY seq ASC
		LIMIT 1
	`, coinAddress).Scan(
		&rec.ID, &rec.Image, &rec.Title, &rec.Description,
		&rec.Owner, &rec.CoinAddress, &rec.ExplorerURL, &rec.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MemoryRecord{}, apperr.NotFound("no memory minted as coin " + coinAddress)
	}
	if err != nil {
		return models.MemoryRecord{}, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]models.MemoryRecord, error) {
	defer rows.Close()

	records := make([]models.MemoryRecord, 0)
	for rows.Next() {
		var rec models.MemoryRecord
		err := rows.Scan(
			&rec.ID, &rec.Image, &rec.Title, &rec.Description,
			&rec.Owner, &rec.CoinAddress, &rec.ExplorerURL, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}
