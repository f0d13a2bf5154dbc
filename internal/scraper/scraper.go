// Package scraper defines the contract for turning one (pair, date range)
// request into normalized records, plus the failure taxonomy callers use to
// pick a retry policy.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
)

// Scraper fetches and normalizes the historical series for one pair over an
// absolute date range.
type Scraper interface {
	Scrape(ctx context.Context, pair forex.Pair, from, to time.Time) ([]forex.Record, error)
}

// NetworkError reports a transport-level failure: the source was unreachable,
// timed out, or answered with a non-success status. Transient by nature; the
// next scheduled firing retries with a fresh job.
type NetworkError struct {
	Status int // zero when the request never completed
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("source returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("source unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ContentError reports a response that arrived but did not contain the
// expected structure (empty body, no data table). Not worth retrying within
// the same firing: page structure does not change within seconds.
type ContentError struct {
	Reason string
	Err    error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable source content: %s: %v", e.Reason, e.Err)
	}
	return "unusable source content: " + e.Reason
}

func (e *ContentError) Unwrap() error { return e.Err }
