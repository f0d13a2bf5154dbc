package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
	"github.com/ozanyurtsever/forex-api/internal/scraper"
)

const historyTable = `<html><body>
<table>
  <thead><tr>
    <th>Date</th><th>Open</th><th>High</th><th>Low</th>
    <th>Close <span>Close price adjusted for splits.</span></th>
    <th>Adj Close <span>Adjusted close price.</span></th>
    <th>Volume</th>
  </tr></thead>
  <tbody>
    <tr><td>Jun 14, 2024</td><td>1.0740</td><td>1.0755</td><td>1.0710</td><td>1.0721</td><td>1.0721</td><td>-</td></tr>
    <tr><td>Jun 13, 2024</td><td>1.0810</td><td>1.0820</td><td>1.0730</td><td>1.0740</td><td>1.0740</td><td>-</td></tr>
    <tr><td>Jun 12, 2024</td><td>1.0740</td><td>1.0860</td><td>1.0730</td><td>1.0810</td><td>1.0810</td><td>-</td></tr>
    <tr><td>Jun 11, 2024</td><td>1.0770</td><td>1.0775</td><td>1.0735</td><td>1.0740</td><td>1.0740</td><td>-</td></tr>
    <tr><td>Jun 10, 2024</td><td>1.0800</td><td>1.0805</td><td>1.0760</td><td>1.0770</td><td>1.0770</td><td>-</td></tr>
  </tbody>
</table>
</body></html>`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Scraper) {
	t.Helper()
	ts := httptest.NewServer(handler)
	s := New(WithClient(ts.Client()), WithBaseURL(ts.URL))
	return ts, s
}

func TestScrape(t *testing.T) {
	var gotUA string
	ts, s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/quote/EURUSD=X/history/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "1d" {
			t.Errorf("expected interval=1d, got %s", q.Get("interval"))
		}
		if q.Get("period1") == "" || q.Get("period2") == "" {
			t.Error("expected period1 and period2 query parameters")
		}
		_, _ = fmt.Fprint(w, historyTable)
	})
	defer ts.Close()

	pair, _ := forex.NewPair("EUR", "USD")
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	records, err := s.Scrape(context.Background(), pair, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	if !records[0].Close.Valid || records[0].Close.Decimal.String() != "1.0721" {
		t.Errorf("unexpected close: %+v", records[0].Close)
	}

	found := false
	for _, ua := range userAgents {
		if gotUA == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("request user agent %q not from the fixed pool", gotUA)
	}
}

func TestScrape_NoTableIsContentError(t *testing.T) {
	ts, s := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><h1>Will be right back</h1></body></html>`)
	})
	defer ts.Close()

	pair, _ := forex.NewPair("EUR", "USD")
	_, err := s.Scrape(context.Background(), pair, time.Now().AddDate(0, 0, -7), time.Now())

	var cerr *scraper.ContentError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *scraper.ContentError, got %T: %v", err, err)
	}
}

func TestScrape_NonSuccessStatusIsNetworkError(t *testing.T) {
	ts, s := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer ts.Close()

	pair, _ := forex.NewPair("EUR", "USD")
	_, err := s.Scrape(context.Background(), pair, time.Now().AddDate(0, 0, -7), time.Now())

	var nerr *scraper.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *scraper.NetworkError, got %T: %v", err, err)
	}
	if nerr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", nerr.Status)
	}
}

func TestScrape_ConnectionRefusedIsNetworkError(t *testing.T) {
	ts, s := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {})
	ts.Close() // refuse connections

	pair, _ := forex.NewPair("EUR", "USD")
	_, err := s.Scrape(context.Background(), pair, time.Now().AddDate(0, 0, -7), time.Now())

	var nerr *scraper.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *scraper.NetworkError, got %T: %v", err, err)
	}
	if nerr.Status != 0 {
		t.Errorf("expected zero status for transport failure, got %d", nerr.Status)
	}
}

func TestScrape_InvalidRange(t *testing.T) {
	s := New()
	pair, _ := forex.NewPair("EUR", "USD")

	if _, err := s.Scrape(context.Background(), pair, time.Time{}, time.Now()); err == nil {
		t.Error("expected error for zero start date")
	}
	if _, err := s.Scrape(context.Background(), pair, time.Now(), time.Now().AddDate(0, 0, -1)); err == nil {
		t.Error("expected error for start after end")
	}
}
