package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
	domain "github.com/ozanyurtsever/forex-api/internal/ledger"
)

const dateFormat = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts the batch inside one transaction. Any failure, including a
// record with no date, rolls the whole batch back so the collection is left
// exactly as it was before the call.
func (r *Repository) Append(ctx context.Context, key string, records []forex.Record) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("append: storage key cannot be empty")
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rates (storage_key, date, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("append: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		if rec.Date.IsZero() {
			return 0, fmt.Errorf("append: record %d has no date", i)
		}
		if _, err := stmt.ExecContext(ctx,
			key, rec.Date.Format(dateFormat),
			rec.Open, rec.High, rec.Low, rec.Close, rec.AdjClose, rec.Volume,
		); err != nil {
			return 0, fmt.Errorf("append: insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append: commit: %w", err)
	}

	return int64(len(records)), nil
}

func (r *Repository) List(ctx context.Context, key string) ([]domain.Row, error) {
	const query = `SELECT id, storage_key, date, open, high, low, close, adj_close, volume, created_at
		FROM rates WHERE storage_key = ?
		ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		var dateStr, createdStr string
		if err := rows.Scan(
			&row.ID, &row.StorageKey, &dateStr,
			&row.Open, &row.High, &row.Low, &row.Close, &row.AdjClose, &row.Volume,
			&createdStr,
		); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		row.Date, _ = time.Parse(dateFormat, dateStr)
		row.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		out = append(out, row)
	}

	return out, rows.Err()
}
