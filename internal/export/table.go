// Package export writes the loaded page of a list to XLSX or PDF. Writers
// are pure transforms of in-memory rows; nothing is fetched.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, v)
	}
}

type Column struct {
	Title string
	// Width is a relative weight for PDF layout and a character width for
	// spreadsheets. Zero uses the default.
	Width float64
}

// Table holds rows of string, numeric, bool or time.Time cells.
type Table struct {
	Columns []Column
	Rows    [][]any
}

func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return errors.New("export table has no columns")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("export row %d has %d cells, want %d", i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// Meta describes the query a table was exported from.
type Meta struct {
	Resource   string
	Search     string
	Filters    [][2]string
	SortField  string
	SortOrder  string
	Page       int
	TotalPages int
	TotalItems int64
	ExportedAt time.Time
	ExportedBy string
}

func (m Meta) pairs() [][2]string {
	out := [][2]string{
		{"Resource", m.Resource},
		{"Exported at", m.ExportedAt.UTC().Format(time.RFC3339)},
	}
	if m.ExportedBy != "" {
		out = append(out, [2]string{"Exported by", m.ExportedBy})
	}
	out = append(out,
		[2]string{"Page", fmt.Sprintf("%d of %d", m.Page, m.TotalPages)},
		[2]string{"Total items", fmt.Sprintf("%d", m.TotalItems)},
	)
	if m.Search != "" {
		out = append(out, [2]string{"Search", m.Search})
	}
	for _, f := range m.Filters {
		out = append(out, [2]string{"Filter: " + f[0], f[1]})
	}
	if m.SortField != "" {
		out = append(out, [2]string{"Sort", m.SortField + " " + m.SortOrder})
	}
	return out
}

func Write(w io.Writer, format Format, t Table, m Meta) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t, m)
	case FormatPDF:
		return WritePDF(w, t, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FileName builds a download name such as orders-20261015-093000.xlsx.
func FileName(resource string, format Format, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", resource, at.UTC().Format("20060102-150405"), format)
}

// CellText renders a cell the way both writers print it.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.2f", x)
	case float32:
		return fmt.Sprintf("%.2f", x)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil {
			return ""
		}
		return CellText(*x)
	default:
		return fmt.Sprint(x)
	}
}
