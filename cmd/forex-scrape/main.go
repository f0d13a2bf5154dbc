// Command forex-scrape is a one-shot scrape: it prompts for a pair and a
// date range, pulls the history from Yahoo Finance, prints the rows and
// runs them through the storage path against a throwaway database.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozanyurtsever/forex-api/internal/forex"
	"github.com/ozanyurtsever/forex-api/internal/platform/sqlite"
	ledgerrepo "github.com/ozanyurtsever/forex-api/internal/repository/ledger"
	"github.com/ozanyurtsever/forex-api/internal/scraper/yahoo"
)

func main() {
	in := bufio.NewReader(os.Stdin)

	quote := prompt(in, "Currency pair (e.g. EURUSD): ")
	pair, err := forex.ParseSymbol(quote)
	if err != nil {
		fatal(err)
	}

	start, err := time.Parse(forex.DateFormat, prompt(in, "Start date (YYYY-MM-DD): "))
	if err != nil {
		fatal(fmt.Errorf("invalid start date, expected YYYY-MM-DD"))
	}
	end, err := time.Parse(forex.DateFormat, prompt(in, "End date (YYYY-MM-DD): "))
	if err != nil {
		fatal(fmt.Errorf("invalid end date, expected YYYY-MM-DD"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := yahoo.New().Scrape(ctx, pair, start, end)
	if err != nil {
		fatal(err)
	}
	if len(records) == 0 {
		fatal(fmt.Errorf("no data found for %s between %s and %s",
			pair.Key(), start.Format(forex.DateFormat), end.Format(forex.DateFormat)))
	}

	fmt.Printf("%-12s %10s %10s %10s %10s %10s %10s\n",
		"date", "open", "high", "low", "close", "adj_close", "volume")
	for _, r := range records {
		fmt.Printf("%-12s %10s %10s %10s %10s %10s %10s\n",
			r.Date.Format(forex.DateFormat),
			cell(r.Open), cell(r.High), cell(r.Low),
			cell(r.Close), cell(r.AdjClose), cell(r.Volume))
	}

	// Exercise the storage path against a throwaway in-memory database.
	db, err := sqlite.Open(":memory:")
	if err != nil {
		fatal(err)
	}
	defer func() { _ = db.Close() }()

	key := forex.RangeKey(pair, start, end)
	n, err := ledgerrepo.NewRepository(db.DB).Append(ctx, key, records)
	if err != nil {
		fatal(err)
	}

	slog.Info("scrape finished", "pair", pair.Key(), "storage_key", key, "stored", n)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		fatal(err)
	}
	return strings.TrimSpace(line)
}

func cell(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
