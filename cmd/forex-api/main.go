package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ozanyurtsever/forex-api/internal/config"
	"github.com/ozanyurtsever/forex-api/internal/job"
	"github.com/ozanyurtsever/forex-api/internal/platform/sqlite"
	"github.com/ozanyurtsever/forex-api/internal/rates"
	jobrepo "github.com/ozanyurtsever/forex-api/internal/repository/job"
	ledgerrepo "github.com/ozanyurtsever/forex-api/internal/repository/ledger"
	"github.com/ozanyurtsever/forex-api/internal/schedule"
	"github.com/ozanyurtsever/forex-api/internal/scraper/yahoo"
	"github.com/ozanyurtsever/forex-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	pairs, _ := cfg.ParsePairs()
	periods, _ := cfg.ParsePeriods()
	interval, dailyAt, _ := cfg.ParseSchedule()

	// Root context: cancelled on SIGINT/SIGTERM so the scheduler, the worker
	// pool and in-flight requests wind down together.
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	ledgerRepo := ledgerrepo.NewRepository(db.DB)
	jobRepo := jobrepo.NewRepository(db.DB)

	// Services
	sc := yahoo.New()
	ratesSvc := rates.NewService(ledgerRepo, jobRepo, sc)
	jobSvc := job.NewService(jobRepo)

	// Worker pool executes queued jobs; the dispatcher and scheduler feed it.
	pool := job.NewWorkerPool(jobRepo, ratesSvc, cfg.Workers)
	dispatcher := job.NewDispatcher(jobRepo, pairs, periods, pool.Notify)
	scheduler := schedule.New(dispatcher, interval, dailyAt)

	// Re-queue jobs a previous process left running, then wake the pool.
	if err := jobSvc.RecoverStaleJobs(rootCtx); err != nil {
		slog.Error("failed to recover stale jobs", "error", err)
	}
	pool.Notify()

	srv := server.New(rootCtx, cfg.Port, ratesSvc, jobSvc)

	g, gCtx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		pool.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		scheduler.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Shut the HTTP server down once the root context is cancelled; the pool
	// and scheduler stop on their own.
	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("server started", "port", cfg.Port, "workers", cfg.Workers,
		"pairs", cfg.Pairs, "periods", cfg.Periods)

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
