// Package job models one unit of ingestion work, a (pair, period) resolved
// to an absolute date range, together with the queue it lives on, the
// worker pool that executes it, and the dispatcher that enqueues batches.
package job

import (
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage is the pipeline step a running job is in; on failure it records
// where the job died.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageNormalizing Stage = "normalizing"
	StageStoring     Stage = "storing"
)

type Job struct {
	ID           int64        `json:"id"`
	Pair         forex.Pair   `json:"pair"`
	Period       forex.Period `json:"period"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	StorageKey   string       `json:"storageKey"`
	Status       Status       `json:"status"`
	Stage        Stage        `json:"stage,omitempty"`
	Error        string       `json:"error,omitempty"`
	RecordsCount int64        `json:"recordsCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
