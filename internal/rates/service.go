// Package rates is the application service around the ingestion pipeline:
// the worker-pool processor for scheduled jobs and the synchronous
// scrape-and-store paths behind the query endpoints.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/apperror"
	"github.com/ozanyurtsever/forex-api/internal/forex"
	"github.com/ozanyurtsever/forex-api/internal/job"
	"github.com/ozanyurtsever/forex-api/internal/ledger"
	"github.com/ozanyurtsever/forex-api/internal/scraper"
)

type Service struct {
	ledgerRepo ledger.Repository
	jobRepo    job.Repository
	scraper    scraper.Scraper
	now        func() time.Time
}

func NewService(ledgerRepo ledger.Repository, jobRepo job.Repository, sc scraper.Scraper) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		jobRepo:    jobRepo,
		scraper:    sc,
		now:        time.Now,
	}
}

// Process implements job.Processor. It drives one claimed job through
// fetch/extract/normalize/store, persisting the stage it is in so a failed
// job records where it died. Errors terminate this job only.
func (s *Service) Process(ctx context.Context, j *job.Job) error {
	s.setStage(ctx, j, job.StageFetching)

	records, err := s.scraper.Scrape(ctx, j.Pair, j.StartDate, j.EndDate)
	if err != nil {
		j.Stage = scrapeFailureStage(err)
		return s.failJob(ctx, j, err)
	}

	s.setStage(ctx, j, job.StageStoring)

	n, err := s.ledgerRepo.Append(ctx, j.StorageKey, records)
	if err != nil {
		return s.failJob(ctx, j, fmt.Errorf("append batch: %w", err))
	}

	slog.Info("stored scraped batch", "pair", j.Pair.Key(), "period", j.Period,
		"storage_key", j.StorageKey, "records", n)

	j.Status = job.StatusCompleted
	j.Stage = ""
	j.RecordsCount = n
	_ = s.jobRepo.Update(ctx, j)
	return nil
}

func (s *Service) setStage(ctx context.Context, j *job.Job, stage job.Stage) {
	j.Stage = stage
	_ = s.jobRepo.Update(ctx, j)
}

func (s *Service) failJob(ctx context.Context, j *job.Job, err error) error {
	j.Status = job.StatusFailed
	j.Error = err.Error()
	_ = s.jobRepo.Update(ctx, j)
	return err
}

// scrapeFailureStage maps the scraper's failure taxonomy onto the pipeline
// stage that produced it. Normalization itself never fails; it drops rows.
func scrapeFailureStage(err error) job.Stage {
	var nerr *scraper.NetworkError
	if errors.As(err, &nerr) {
		return job.StageFetching
	}
	var cerr *scraper.ContentError
	if errors.As(err, &cerr) {
		return job.StageExtracting
	}
	return job.StageFetching
}

// ScrapePeriod runs the pipeline synchronously for one pair over a relative
// period and returns the stored batch. Used by POST /api/forex-data.
func (s *Service) ScrapePeriod(ctx context.Context, req PeriodRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pair, err := forex.NewPair(req.From, req.To)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}
	period, err := forex.ParsePeriod(req.Period)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}

	start, end, err := period.Resolve(s.now())
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}

	return s.scrapeAndStore(ctx, pair, forex.PeriodKey(pair, period), start, end)
}

// ScrapeRange is the explicit date-range variant behind
// POST /api/forex-data-range.
func (s *Service) ScrapeRange(ctx context.Context, req RangeRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pair, err := forex.ParseSymbol(req.Quote)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}
	start, err := time.Parse(forex.DateFormat, req.StartDate)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, "invalid start_date format, expected YYYY-MM-DD")
	}
	end, err := time.Parse(forex.DateFormat, req.EndDate)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, "invalid end_date format, expected YYYY-MM-DD")
	}
	if !start.Before(end) {
		return nil, apperror.New(apperror.BadRequest, "start_date must be before end_date")
	}

	return s.scrapeAndStore(ctx, pair, forex.RangeKey(pair, start, end), start, end)
}

func (s *Service) scrapeAndStore(ctx context.Context, pair forex.Pair, key string, start, end time.Time) (*Result, error) {
	records, err := s.scraper.Scrape(ctx, pair, start, end)
	if err != nil {
		slog.Error("synchronous scrape failed", "pair", pair.Key(), "storage_key", key, "error", err)

		var nerr *scraper.NetworkError
		if errors.As(err, &nerr) {
			return nil, apperror.New(apperror.Unavailable, "data source unavailable")
		}
		return nil, apperror.New(apperror.NotFound, "no data found for the specified query")
	}
	if len(records) == 0 {
		return nil, apperror.New(apperror.NotFound, "no data found for the specified query")
	}

	if _, err := s.ledgerRepo.Append(ctx, key, records); err != nil {
		slog.Error("store scraped batch", "storage_key", key, "error", err)
		return nil, apperror.New(apperror.Internal, "failed to store scraped data")
	}

	return &Result{StorageKey: key, Records: records}, nil
}

// ListStored returns everything ever appended under one storage key.
func (s *Service) ListStored(ctx context.Context, key string) ([]ledger.Row, error) {
	if key == "" {
		return nil, apperror.New(apperror.BadRequest, "storage key is required")
	}
	rows, err := s.ledgerRepo.List(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list stored rates: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperror.New(apperror.NotFound, "no stored data for key "+key)
	}
	return rows, nil
}
