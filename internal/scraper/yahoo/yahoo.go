// Package yahoo scrapes historical currency-pair data from Yahoo Finance's
// HTML history pages. One invocation issues exactly one outbound GET and
// runs the full fetch, extract, normalize pipeline.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/ozanyurtsever/forex-api/internal/forex"
	"github.com/ozanyurtsever/forex-api/internal/htmltable"
	"github.com/ozanyurtsever/forex-api/internal/scraper"
)

const (
	defaultBaseURL = "https://finance.yahoo.com"
	defaultTimeout = 30 * time.Second
	dateFormat     = "2006-01-02"
)

// userAgents is a small fixed pool; each request picks one pseudo-randomly.
// Best-effort politeness toward the source, not a security control.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// Scraper fetches historical price tables from Yahoo Finance.
type Scraper struct {
	client  *http.Client
	baseURL string
	pickUA  func() string
}

// New creates a Scraper with the given options applied.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: defaultBaseURL,
		pickUA:  func() string { return userAgents[rand.IntN(len(userAgents))] },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithBaseURL overrides the source base URL.
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = u }
}

// Scrape fetches the history page for the pair and date range, extracts the
// first data table, and normalizes it. Failures are classified as
// *scraper.NetworkError or *scraper.ContentError.
func (s *Scraper) Scrape(ctx context.Context, pair forex.Pair, from, to time.Time) ([]forex.Record, error) {
	if from.IsZero() {
		return nil, fmt.Errorf("start date cannot be empty")
	}
	if to.IsZero() {
		to = time.Now()
	}
	if from.After(to) {
		return nil, fmt.Errorf("start date cannot be after end date")
	}

	body, err := s.fetch(ctx, pair, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	table, err := htmltable.Extract(body)
	if err != nil {
		if errors.Is(err, htmltable.ErrNoTable) {
			return nil, &scraper.ContentError{Reason: "no historical data table on page", Err: err}
		}
		return nil, &scraper.ContentError{Reason: "malformed page", Err: err}
	}

	records := forex.Normalize(table.Headers, table.Rows)

	slog.Info("retrieved yahoo data", "pair", pair.Key(),
		"from", from.Format(dateFormat), "to", to.Format(dateFormat),
		"rows", len(table.Rows), "records", len(records))

	return records, nil
}

// fetch issues the single outbound GET for one (pair, range) at daily
// sampling. No caching, no persistent request identity across calls.
func (s *Scraper) fetch(ctx context.Context, pair forex.Pair, from, to time.Time) (io.ReadCloser, error) {
	reqURL := fmt.Sprintf("%s/quote/%s/history/?period1=%s&period2=%s&interval=1d",
		s.baseURL,
		pair.Symbol(),
		strconv.FormatInt(from.Unix(), 10),
		strconv.FormatInt(to.Unix(), 10),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.pickUA())

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &scraper.NetworkError{Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, &scraper.NetworkError{Status: res.StatusCode}
	}

	return res.Body, nil
}
