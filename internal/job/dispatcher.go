package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
)

// Dispatcher expands the fixed cross-product of configured pairs and periods
// into pending jobs and wakes the worker pool. It never waits for the jobs
// it enqueued: the pool's capacity is the sole throttle, and overlapping
// firings simply deepen the queue.
type Dispatcher struct {
	repo    Repository
	pairs   []forex.Pair
	periods []forex.Period
	notify  func()
	now     func() time.Time
}

func NewDispatcher(repo Repository, pairs []forex.Pair, periods []forex.Period, notify func()) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		pairs:   pairs,
		periods: periods,
		notify:  notify,
		now:     time.Now,
	}
}

// Dispatch enqueues one job per (pair, period) and returns. A pair or period
// that fails to enqueue is logged and skipped; it never blocks the rest of
// the batch.
func (d *Dispatcher) Dispatch(ctx context.Context) {
	now := d.now()
	enqueued := 0

	for _, pair := range d.pairs {
		for _, period := range d.periods {
			start, end, err := period.Resolve(now)
			if err != nil {
				slog.Error("dispatch: resolve period", "pair", pair.Key(), "period", period, "error", err)
				continue
			}

			j := &Job{
				Pair:       pair,
				Period:     period,
				StartDate:  start,
				EndDate:    end,
				StorageKey: forex.PeriodKey(pair, period),
				Status:     StatusPending,
			}
			if err := d.repo.Create(ctx, j); err != nil {
				slog.Error("dispatch: enqueue job", "pair", pair.Key(), "period", period, "error", err)
				continue
			}
			enqueued++
		}
	}

	depth, err := d.repo.PendingCount(ctx)
	if err != nil {
		slog.Error("dispatch: queue depth", "error", err)
		depth = -1
	}
	slog.Info("dispatched scrape jobs", "enqueued", enqueued, "queue_depth", depth)

	if d.notify != nil {
		d.notify()
	}
}
