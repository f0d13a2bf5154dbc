// End-to-end tests: a fake Yahoo Finance server, a real in-memory database
// and the full HTTP handler, exercised over the wire.
package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
	"github.com/ozanyurtsever/forex-api/internal/job"
	"github.com/ozanyurtsever/forex-api/internal/ledger"
	"github.com/ozanyurtsever/forex-api/internal/platform/sqlite"
	"github.com/ozanyurtsever/forex-api/internal/rates"
	jobrepo "github.com/ozanyurtsever/forex-api/internal/repository/job"
	ledgerrepo "github.com/ozanyurtsever/forex-api/internal/repository/ledger"
	"github.com/ozanyurtsever/forex-api/internal/scraper/yahoo"
	"github.com/ozanyurtsever/forex-api/internal/server"
)

const historyPage = `<html><body>
<table>
<thead><tr>
<th>Date</th><th>Open</th><th>High</th><th>Low</th>
<th>Close <span>Close price adjusted for splits.</span></th>
<th>Adj Close <span>Adjusted close price.</span></th>
<th>Volume</th>
</tr></thead>
<tbody>
<tr><td>Mar 4, 2024</td><td>1.0852</td><td>1.0875</td><td>1.0841</td><td>1.0856</td><td>1.0856</td><td>-</td></tr>
<tr><td>Mar 1, 2024</td><td>1.0805</td><td>1.0844</td><td>1.0795</td><td>1.0838</td><td>1.0838</td><td>-</td></tr>
</tbody>
</table>
</body></html>`

type testEnv struct {
	api        *httptest.Server
	ledgerRepo ledger.Repository
	jobRepo    job.Repository
	ratesSvc   *rates.Service
}

func setup(t *testing.T, source http.HandlerFunc) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(source)
	t.Cleanup(upstream.Close)

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ledgerRepo := ledgerrepo.NewRepository(db.DB)
	jobRepo := jobrepo.NewRepository(db.DB)

	sc := yahoo.New(yahoo.WithClient(upstream.Client()), yahoo.WithBaseURL(upstream.URL))
	ratesSvc := rates.NewService(ledgerRepo, jobRepo, sc)
	jobSvc := job.NewService(jobRepo)

	api := httptest.NewServer(server.NewHandler(ratesSvc, jobSvc))
	t.Cleanup(api.Close)

	return &testEnv{api: api, ledgerRepo: ledgerRepo, jobRepo: jobRepo, ratesSvc: ratesSvc}
}

func servePage(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, historyPage)
	}
}

func postJSON[T any](t *testing.T, url string) (int, server.APIResponse[T]) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil) //nolint:gosec // test URL
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()

	var body server.APIResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func TestScrapePeriodEndToEnd(t *testing.T) {
	env := setup(t, servePage(t))

	url := env.api.URL + "/api/forex-data?from=GBP&to=INR&period=1M"
	status, body := postJSON[rates.Result](t, url)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, body.Message)
	}
	if body.Data.StorageKey != "GBPINR_1M" {
		t.Errorf("storage key = %q, want GBPINR_1M", body.Data.StorageKey)
	}
	if len(body.Data.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(body.Data.Records))
	}

	// Source table order is preserved: newest row first.
	if got := body.Data.Records[0].Date.Format("2006-01-02"); got != "2024-03-04" {
		t.Errorf("first record date = %s, want 2024-03-04", got)
	}
	if got := body.Data.Records[0].Close.Decimal.String(); got != "1.0856" {
		t.Errorf("close = %s, want 1.0856", got)
	}

	// The ledger reads back oldest first.

	rows, err := env.ledgerRepo.List(context.Background(), "GBPINR_1M")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("persisted rows = %d, want 2", len(rows))
	}
}

func TestScrapeRangeEndToEnd(t *testing.T) {
	env := setup(t, servePage(t))

	url := env.api.URL + "/api/forex-data-range?quote=GBPINR&start_date=2024-03-01&end_date=2024-03-05"
	status, body := postJSON[rates.Result](t, url)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, body.Message)
	}
	if body.Data.StorageKey != "GBPINR_2024-03-01_to_2024-03-05" {
		t.Errorf("storage key = %q", body.Data.StorageKey)
	}
}

func TestRepeatedScrapesAppend(t *testing.T) {
	env := setup(t, servePage(t))
	url := env.api.URL + "/api/forex-data?from=GBP&to=INR&period=1W"

	for i := 0; i < 2; i++ {
		if status, body := postJSON[rates.Result](t, url); status != http.StatusOK {
			t.Fatalf("scrape %d: status = %d (%s)", i, status, body.Message)
		}
	}

	rows, err := env.ledgerRepo.List(context.Background(), "GBPINR_1W")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Errorf("rows = %d, want 4 (both pulls kept)", len(rows))
	}
}

func TestEmptyUpstreamIs404(t *testing.T) {
	env := setup(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table><thead><tr><th>Date</th></tr></thead></table></body></html>`)
	})

	url := env.api.URL + "/api/forex-data?from=GBP&to=INR&period=1W"
	status, body := postJSON[string](t, url)

	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if body.Message != "no data found for the specified query" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestUpstreamFailureIs502(t *testing.T) {
	env := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	url := env.api.URL + "/api/forex-data?from=GBP&to=INR&period=1W"
	status, body := postJSON[string](t, url)

	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if body.Message != "data source unavailable" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestQueuedJobEndToEnd(t *testing.T) {
	env := setup(t, servePage(t))
	ctx := context.Background()

	// Enqueue one job directly and run a pool against it.
	start, _ := time.Parse("2006-01-02", "2024-03-01")
	end, _ := time.Parse("2006-01-02", "2024-03-05")

	pair, err := forex.NewPair("GBP", "INR")
	if err != nil {
		t.Fatal(err)
	}

	j := &job.Job{
		Pair:       pair,
		Period:     forex.Period1W,
		StartDate:  start,
		EndDate:    end,
		StorageKey: "GBPINR_1W",
		Status:     job.StatusPending,
	}
	if err := env.jobRepo.Create(ctx, j); err != nil {
		t.Fatal(err)
	}

	pool := job.NewWorkerPool(env.jobRepo, env.ratesSvc, 2)
	poolCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		pool.Run(poolCtx)
		close(done)
	}()
	pool.Notify()

	deadline := time.After(5 * time.Second)
	for {
		got, err := env.jobRepo.Get(ctx, j.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status == job.StatusCompleted {
			if got.RecordsCount != 2 {
				t.Errorf("records count = %d, want 2", got.RecordsCount)
			}
			break
		}
		if got.Status == job.StatusFailed {
			t.Fatalf("job failed: %s (stage %s)", got.Error, got.Stage)
		}
		select {
		case <-deadline:
			t.Fatalf("job never completed, status %s", got.Status)
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	<-done

	rows, err := env.ledgerRepo.List(ctx, "GBPINR_1W")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}
