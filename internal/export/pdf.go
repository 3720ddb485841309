package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
)

const (
	pdfPageWidth = 277.0
	pdfRowHeight = 7.0
)

// WritePDF renders a landscape A4 report: a metadata block followed by the
// table. Header rows repeat on every page.
func WritePDF(w io.Writer, t Table, m Meta) error {
	if err := t.Validate(); err != nil {
		return err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("%s export", m.Resource)), false)
	pdf.SetAutoPageBreak(true, 12)

	widths := columnWidths(t.Columns)
	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(c.Title), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr(fmt.Sprintf("%s export", m.Resource)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, kv := range m.pairs() {
		pdf.CellFormat(40, 5, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		for i, v := range row {
			text := CellText(v)
			for len(text) > 0 && pdf.GetStringWidth(text) > widths[i]-2 {
				text = text[:len(text)-1]
			}
			pdf.CellFormat(widths[i], pdfRowHeight, tr(text), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Rows) == 0 {
		pdf.CellFormat(pdfPageWidth, pdfRowHeight, "No rows", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, c := range cols {
		total += weight(c)
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = pdfPageWidth * weight(c) / total
	}
	return out
}

func weight(c Column) float64 {
	if c.Width > 0 {
		return c.Width
	}
	return 18
}
