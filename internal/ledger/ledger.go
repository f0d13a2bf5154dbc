// Package ledger defines the append-only collection of normalized price
// records, partitioned by storage key. Batches are appended atomically and
// never rewritten; repeated appends of the same batch are kept as separate
// copies so every raw pull remains auditable.
package ledger

import (
	"context"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
)

// Row is one persisted record together with the key it was stored under.
type Row struct {
	ID         int64     `json:"id"`
	StorageKey string    `json:"storageKey"`
	forex.Record
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	// Append stores the whole batch under key, all-or-nothing: after an
	// error none of the batch is visible. It does not deduplicate across
	// calls; callers control idempotency by appending once per job
	// execution. Returns the number of rows stored.
	Append(ctx context.Context, key string, records []forex.Record) (int64, error)

	// List returns all rows ever appended under key, ordered by date then
	// insertion order.
	List(ctx context.Context, key string) ([]Row, error)
}
