// Package schedule fires the job dispatcher on a recurring cadence: once
// immediately at startup, then on a short fixed interval and at a daily
// anchor time. Firings never wait on each other; the worker pool's capacity
// is the only throttle downstream.
package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher enqueues one batch of scrape jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context)
}

type Scheduler struct {
	dispatcher Dispatcher
	interval   time.Duration
	dailyAt    time.Duration // offset from midnight, local time
	now        func() time.Time
}

// New creates a scheduler firing every interval and once per day at the
// given offset from local midnight.
func New(dispatcher Dispatcher, interval, dailyAt time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		dispatcher: dispatcher,
		interval:   interval,
		dailyAt:    dailyAt,
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled. Both triggers invoke the dispatcher on
// the scheduler goroutine; Dispatch itself only enqueues, so a firing never
// stalls the loop for long.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	daily := time.NewTimer(s.untilNextDaily())
	defer daily.Stop()

	slog.Info("scheduler started", "interval", s.interval, "next_daily_in", s.untilNextDaily().Round(time.Second))

	s.dispatcher.Dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.dispatcher.Dispatch(ctx)
		case <-daily.C:
			s.dispatcher.Dispatch(ctx)
			daily.Reset(s.untilNextDaily())
		}
	}
}

// untilNextDaily computes the wait until the next daily anchor. Anchors in
// the past today roll over to tomorrow.
func (s *Scheduler) untilNextDaily() time.Duration {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := midnight.Add(s.dailyAt)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
