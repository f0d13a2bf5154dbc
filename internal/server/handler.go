package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ozanyurtsever/forex-api/internal/apperror"
	"github.com/ozanyurtsever/forex-api/internal/job"
	"github.com/ozanyurtsever/forex-api/internal/rates"
)

type handler struct {
	ratesSvc *rates.Service
	jobSvc   *job.Service
}

func (h *handler) home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "Forex data API")
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// forexData scrapes and stores a pair over a relative period, synchronously,
// and returns the stored batch.
func (h *handler) forexData(w http.ResponseWriter, r *http.Request) {
	req := rates.PeriodRequest{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Period: r.URL.Query().Get("period"),
	}

	res, err := h.ratesSvc.ScrapePeriod(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// forexDataRange is the explicit start/end date variant.
func (h *handler) forexDataRange(w http.ResponseWriter, r *http.Request) {
	req := rates.RangeRequest{
		Quote:     r.URL.Query().Get("quote"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	res, err := h.ratesSvc.ScrapeRange(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *handler) storedRates(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ratesSvc.ListStored(r.Context(), r.PathValue("key"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	j, err := h.jobSvc.Get(r.Context(), job.GetJobRequest{ID: id})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, j)
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := job.ListJobsRequest{
		Pair:   r.URL.Query().Get("pair"),
		Period: r.URL.Query().Get("period"),
	}

	jobs, err := h.jobSvc.List(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// writeServiceError maps classified errors to their status and hides
// everything else behind a generic 500. The internal cause is logged, never
// sent to the client.
func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}

	slog.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
}
