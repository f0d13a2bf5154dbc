package job

import "context"

type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, pair, period string) ([]Job, error)
	// ClaimPending atomically moves the oldest pending job to running and
	// returns it, or nil when the queue is empty.
	ClaimPending(ctx context.Context) (*Job, error)
	// PendingCount is the current queue depth.
	PendingCount(ctx context.Context) (int64, error)
	// RecoverStale re-queues jobs left running by a previous process.
	RecoverStale(ctx context.Context) (int64, error)
}
