package forex

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// positionalColumns is the fallback schema when the source table has no
// header cells: Yahoo's history table column order.
var positionalColumns = []string{"date", "open", "high", "low", "close", "adj_close", "volume"}

var knownColumns = map[string]bool{
	"date": true, "open": true, "high": true, "low": true,
	"close": true, "adj_close": true, "volume": true,
}

// dateFormats covers the date renderings the history table has been observed
// to use.
var dateFormats = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	DateFormat,
}

// CanonicalHeader lower-cases and trims a header label and collapses the
// source's annotated variants: any label starting with "adj close" becomes
// adj_close, "close" becomes close, "volume" becomes volume. Labels that do
// not canonicalize to a known column are returned as-is and dropped by
// Normalize together with their column.
func CanonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	switch {
	case strings.HasPrefix(h, "adj close"):
		return "adj_close"
	case strings.HasPrefix(h, "close"):
		return "close"
	case strings.HasPrefix(h, "volume"):
		return "volume"
	}
	return h
}

// Normalize maps extracted headers and raw rows onto Records. Rows whose date
// cell does not parse are dropped entirely; numeric cells that do not parse
// survive as missing values. Output depends only on the inputs.
func Normalize(headers []string, rows [][]string) []Record {
	columns := make([]string, 0, len(headers))
	for _, h := range headers {
		columns = append(columns, CanonicalHeader(h))
	}
	if len(columns) == 0 {
		columns = positionalColumns
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := normalizeRow(columns, row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func normalizeRow(columns []string, row []string) (Record, bool) {
	var rec Record
	dated := false

	for i, cell := range row {
		if i >= len(columns) {
			break
		}
		name := columns[i]
		if !knownColumns[name] {
			continue
		}

		switch name {
		case "date":
			d, ok := parseDate(cell)
			if !ok {
				return Record{}, false
			}
			rec.Date = d
			dated = true
		case "open":
			rec.Open = parseDecimal(cell)
		case "high":
			rec.High = parseDecimal(cell)
		case "low":
			rec.Low = parseDecimal(cell)
		case "close":
			rec.Close = parseDecimal(cell)
		case "adj_close":
			rec.AdjClose = parseDecimal(cell)
		case "volume":
			rec.Volume = parseVolume(cell)
		}
	}

	// A dateless record has no key; the whole row is filtered out.
	return rec, dated
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseDecimal(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// parseVolume treats the source's literal "-" as zero; any other value that
// fails to parse is missing, not zero.
func parseVolume(s string) decimal.NullDecimal {
	if strings.TrimSpace(s) == "-" {
		return decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
	}
	return parseDecimal(s)
}
