// Package forex holds the domain model for historical currency-pair data:
// pairs, relative lookback periods, normalized daily records, and the
// storage keys that group repeated ingestions of the same logical series.
package forex

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateFormat = "2006-01-02"

// Pair identifies a currency pair, e.g. EUR/USD. Immutable once constructed;
// it is used only as a request-formatting and storage-lookup key.
type Pair struct {
	Base  string
	Quote string
}

// NewPair builds a Pair from two three-letter currency codes.
func NewPair(base, quote string) (Pair, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if !isCurrencyCode(base) {
		return Pair{}, fmt.Errorf("invalid base currency: %q", base)
	}
	if !isCurrencyCode(quote) {
		return Pair{}, fmt.Errorf("invalid quote currency: %q", quote)
	}
	return Pair{Base: base, Quote: quote}, nil
}

// ParseSymbol parses a Yahoo-style quote symbol such as "EURUSD=X" or a bare
// six-letter pair like "EURUSD".
func ParseSymbol(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "=X")
	if len(s) != 6 {
		return Pair{}, fmt.Errorf("invalid pair symbol: %q", s)
	}
	return NewPair(s[:3], s[3:])
}

// Symbol returns the identifier used in source requests, e.g. "EURUSD=X".
func (p Pair) Symbol() string { return p.Base + p.Quote + "=X" }

// Key returns the identifier used in storage keys, e.g. "EURUSD".
func (p Pair) Key() string { return p.Base + p.Quote }

func (p Pair) String() string { return p.Key() }

// MarshalJSON renders the pair as its storage form, e.g. "EURUSD".
func (p Pair) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.Key() + `"`), nil
}

func (p *Pair) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseSymbol(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Record is one normalized daily row of a price series. Numeric fields use
// NullDecimal: a value that failed coercion is marked missing, never zero.
// The only exception is volume, where the source's literal "-" means zero.
type Record struct {
	Date     time.Time           `json:"date"`
	Open     decimal.NullDecimal `json:"open"`
	High     decimal.NullDecimal `json:"high"`
	Low      decimal.NullDecimal `json:"low"`
	Close    decimal.NullDecimal `json:"close"`
	AdjClose decimal.NullDecimal `json:"adjClose"`
	Volume   decimal.NullDecimal `json:"volume"`
}

// PeriodKey derives the storage key grouping scheduled ingestions of one
// (pair, period) series, e.g. "EURUSD_1M".
func PeriodKey(p Pair, period Period) string {
	return p.Key() + "_" + string(period)
}

// RangeKey derives the storage key for an explicit date-range query,
// e.g. "EURUSD_2024-01-01_to_2024-02-01".
func RangeKey(p Pair, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_to_%s", p.Key(), start.Format(DateFormat), end.Format(DateFormat))
}
