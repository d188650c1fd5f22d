package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// The core PDF fonts are cp1252 and lack these Turkish letters.
var turkishFallback = strings.NewReplacer("ş", "s", "Ş", "S", "ğ", "g", "Ğ", "G", "ı", "i", "İ", "I")

// PDFExporter renders a timetable as a landscape A4 document, one block per section.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(t Timetable) ([]byte, error) {
	if len(t.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	utf := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return utf(turkishFallback.Replace(s)) }

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, text(t.Title), "", 1, "C", false, 0, "")
	}
	if t.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, text(t.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(t.Headers))

	for _, section := range t.Sections {
		if len(section.Rows) == 0 {
			continue
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(11, 31, 59)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(0, 7, text(section.Title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Arial", "B", 9)
		for _, header := range t.Headers {
			pdf.CellFormat(colWidth, 7, text(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			for i := range t.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(colWidth, 6, text(cell), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
