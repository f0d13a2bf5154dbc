package forex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a relative lookback window resolved to an absolute [start, end)
// range at dispatch time, anchored to "now".
type Period string

const (
	Period1W Period = "1W"
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
)

// Periods lists the windows the scheduler ingests for every configured pair.
func Periods() []Period {
	return []Period{Period1W, Period1M, Period3M, Period6M, Period1Y}
}

// ParsePeriod accepts the scheduled enum values plus the generic "NM"/"NY"
// forms the query API allows (N months of 30 days, N years of 365 days).
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := p.days(); err != nil {
		return "", err
	}
	return p, nil
}

// Resolve maps the period to absolute instants: end is now, start is the
// period's length before it.
func (p Period) Resolve(now time.Time) (start, end time.Time, err error) {
	days, err := p.days()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return now.AddDate(0, 0, -days), now, nil
}

func (p Period) days() (int, error) {
	switch p {
	case Period1W:
		return 7, nil
	case Period1M:
		return 30, nil
	case Period3M:
		return 90, nil
	case Period6M:
		return 180, nil
	case Period1Y:
		return 365, nil
	}

	// Generic NM / NY forms, e.g. "2M" or "5Y".
	s := string(p)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid period: %q", s)
	}
	n, convErr := strconv.Atoi(s[:len(s)-1])
	if convErr != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period: %q", s)
	}
	switch s[len(s)-1] {
	case 'M':
		return n * 30, nil
	case 'Y':
		return n * 365, nil
	}
	return 0, fmt.Errorf("invalid period: %q (use NM for months or NY for years)", s)
}
