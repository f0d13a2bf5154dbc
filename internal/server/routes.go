package server

import (
	"net/http"

	"github.com/ozanyurtsever/forex-api/internal/job"
	"github.com/ozanyurtsever/forex-api/internal/rates"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(ratesSvc *rates.Service, jobSvc *job.Service) http.Handler {
	return newMux(ratesSvc, jobSvc)
}

func newMux(ratesSvc *rates.Service, jobSvc *job.Service) http.Handler {
	h := &handler{
		ratesSvc: ratesSvc,
		jobSvc:   jobSvc,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /api/forex-data", h.forexData)
	mux.HandleFunc("POST /api/forex-data-range", h.forexDataRange)
	mux.HandleFunc("GET /api/v1/rates/{key}", h.storedRates)
	mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.getJob)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
