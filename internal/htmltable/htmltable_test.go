package htmltable

import (
	"errors"
	"strings"
	"testing"
)

const historyPage = `<!DOCTYPE html>
<html><body>
<div class="wrapper">
<table data-test="historical-prices">
  <thead>
    <tr><th>Date</th><th>Open</th><th><span>Close</span> <small>Close price adjusted for splits.</small></th></tr>
  </thead>
  <tbody>
    <tr><td><span>Jun 14,</span> <span>2024</span></td><td>1.0740</td><td>1.0721</td></tr>
    <tr><td>Jun 13, 2024</td><td>1.0810</td><td>1.0740</td></tr>
  </tbody>
</table>
<table><tr><td>second table, must be ignored</td></tr></table>
</div>
</body></html>`

func TestExtract(t *testing.T) {
	table, err := Extract(strings.NewReader(historyPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHeaders := []string{"Date", "Open", "Close Close price adjusted for splits."}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("expected %d headers, got %d: %v", len(wantHeaders), len(table.Headers), table.Headers)
	}
	for i, h := range wantHeaders {
		if table.Headers[i] != h {
			t.Errorf("header[%d] = %q, want %q", i, table.Headers[i], h)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Jun 14, 2024" {
		t.Errorf("nested markup not flattened: %q", table.Rows[0][0])
	}
	if table.Rows[1][1] != "1.0810" {
		t.Errorf("row[1][1] = %q, want 1.0810", table.Rows[1][1])
	}
}

func TestExtract_NoTable(t *testing.T) {
	_, err := Extract(strings.NewReader(`<html><body><h1>Oops, nothing here</h1></body></html>`))
	if !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
}

func TestExtract_HeaderOnlyTable(t *testing.T) {
	doc := `<table><tr><th>Date</th><th>Close</th></tr></table>`
	table, err := Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("expected no error for header-only table, got %v", err)
	}
	if len(table.Headers) != 2 {
		t.Errorf("expected 2 headers, got %d", len(table.Headers))
	}
	if len(table.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(table.Rows))
	}
}

func TestExtract_SkipsPresentationalRows(t *testing.T) {
	doc := `<table>
		<tr><th>Date</th></tr>
		<tr></tr>
		<tr><td>Jun 14, 2024</td></tr>
	</table>`
	table, err := Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
}

func TestExtract_RaggedRows(t *testing.T) {
	doc := `<table>
		<tr><td>Jun 14, 2024</td><td>1.07</td></tr>
		<tr><td>0.25 Dividend</td></tr>
	</table>`
	table, err := Extract(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if len(table.Rows[0]) != 2 || len(table.Rows[1]) != 1 {
		t.Errorf("row lengths = %d, %d; want 2, 1", len(table.Rows[0]), len(table.Rows[1]))
	}
}
