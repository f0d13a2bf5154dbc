package rates

import (
	"github.com/ozanyurtsever/forex-api/internal/apperror"
	"github.com/ozanyurtsever/forex-api/internal/forex"
)

// PeriodRequest asks for one pair over a relative lookback window.
type PeriodRequest struct {
	From   string
	To     string
	Period string
}

func (r PeriodRequest) Validate() *apperror.AppError {
	if r.From == "" || r.To == "" || r.Period == "" {
		return apperror.New(apperror.BadRequest, "missing required fields: 'from', 'to', 'period'")
	}
	return nil
}

// RangeRequest asks for one quote symbol over an explicit date range.
type RangeRequest struct {
	Quote     string
	StartDate string
	EndDate   string
}

func (r RangeRequest) Validate() *apperror.AppError {
	if r.Quote == "" || r.StartDate == "" || r.EndDate == "" {
		return apperror.New(apperror.BadRequest, "missing required fields: 'quote', 'start_date', 'end_date'")
	}
	return nil
}

// Result is a stored batch together with the key it went under.
type Result struct {
	StorageKey string         `json:"storageKey"`
	Records    []forex.Record `json:"records"`
}
