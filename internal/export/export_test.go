package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func sampleTable() (Table, Meta) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	t := Table{
		Columns: []Column{{Title: "Order"}, {Title: "Customer", Width: 30}, {Title: "Total"}, {Title: "Placed"}},
		Rows: [][]any{
			{"ORD-1001", "Jane Doe", 120.5, at},
			{"ORD-1002", "Zoë Ångström", 42.0, at.Add(time.Hour)},
		},
	}
	m := Meta{
		Resource:   "orders",
		Search:     "jane",
		Filters:    [][2]string{{"status", "pending"}},
		SortField:  "createdAt",
		SortOrder:  "desc",
		Page:       1,
		TotalPages: 3,
		TotalItems: 21,
		ExportedAt: at,
	}
	return t, m
}

func TestWriteXLSXDataAndFiltersSheets(t *testing.T) {
	table, meta := sampleTable()
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, table, meta); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(dataSheet)
	if err != nil {
		t.Fatalf("read data rows: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Customer" || rows[2][1] != "Zoë Ångström" {
		t.Fatalf("unexpected data rows %v", rows)
	}
	if rows[1][3] != "2026-10-15 09:30" {
		t.Fatalf("unexpected time cell %q", rows[1][3])
	}

	filters, err := f.GetRows(filtersSheet)
	if err != nil {
		t.Fatalf("read filter rows: %v", err)
	}
	found := map[string]string{}
	for _, r := range filters {
		if len(r) == 2 {
			found[r[0]] = r[1]
		}
	}
	if found["Filter: status"] != "pending" || found["Search"] != "jane" || found["Page"] != "1 of 3" {
		t.Fatalf("unexpected filters sheet %v", found)
	}
}

func TestWritePDF(t *testing.T) {
	table, meta := sampleTable()
	for i := 0; i < 60; i++ {
		table.Rows = append(table.Rows, []any{"ORD-2000", "Bulk Customer", 10.0, meta.ExportedAt})
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, table, meta); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected pdf header")
	}
}

func TestValidateRejectsRaggedRows(t *testing.T) {
	table := Table{Columns: []Column{{Title: "A"}, {Title: "B"}}, Rows: [][]any{{"only one"}}}
	if err := Write(&bytes.Buffer{}, FormatXLSX, table, Meta{}); err == nil {
		t.Fatal("expected ragged row error")
	}
}

func TestParseFormatAndFileName(t *testing.T) {
	if f, err := ParseFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("parse xlsx: %v %v", f, err)
	}
	if _, err := ParseFormat("csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	if got := FileName("orders", FormatPDF, at); got != "orders-20261015-093000.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
}
