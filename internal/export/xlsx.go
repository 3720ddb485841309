package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet    = "Data"
	filtersSheet = "Filters"
)

// WriteXLSX writes the rows to a Data sheet and the query to a Filters sheet.
func WriteXLSX(w io.Writer, t Table, m Meta) error {
	if err := t.Validate(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, 0, len(t.Columns))
	for i, c := range t.Columns {
		header = append(header, c.Title)
		width := c.Width
		if width <= 0 {
			width = 18
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(dataSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(dataSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dataSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(filtersSheet); err != nil {
		return fmt.Errorf("create filters sheet: %w", err)
	}
	for i, kv := range m.pairs() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		pair := []any{kv[0], kv[1]}
		if err := f.SetSheetRow(filtersSheet, cell, &pair); err != nil {
			return fmt.Errorf("write filters: %w", err)
		}
	}
	if err := f.SetColWidth(filtersSheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set filters width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return CellText(x)
	case *time.Time:
		return CellText(x)
	case bool:
		return CellText(x)
	default:
		return v
	}
}
