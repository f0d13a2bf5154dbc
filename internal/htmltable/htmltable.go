// Package htmltable extracts the first data table from an untrusted HTML
// document as plain strings: header labels plus one cell slice per row.
// It carries no schema knowledge; that lives in the normalizer downstream.
package htmltable

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTable reports a document with no table element at all. For a scrape
// job this is fatal, not retryable: it means an error page or a structural
// change in the source, neither of which resolves within seconds.
var ErrNoTable = errors.New("no data table found in document")

// Table is the raw extraction result. Headers may be empty; rows may vary in
// length when the source emits malformed or spanning cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Extract parses the document and returns the first table's header labels
// and data rows in document order. Rows without any data cell are skipped.
func Extract(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var t Table
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		t.Headers = append(t.Headers, cellText(th))
	})

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return // header or presentational row
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})
		t.Rows = append(t.Rows, row)
	})

	return &t, nil
}

// cellText flattens nested markup to its visible text and collapses all
// internal whitespace runs to single spaces.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
