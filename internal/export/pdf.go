package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"horarium/internal/timetable"
)

// A4 landscape inside 10mm side margins.
const pdfUsableWidth = 277.0

// SchedulePDF renders the grid as a one-page landscape table, hour rows by
// day columns.
func SchedulePDF(g *timetable.Grid, title string) ([]byte, error) {
	if g == nil {
		return nil, errors.New("export: nil grid")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(titleOrDefault(title)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	timeWidth := 26.0
	dayWidth := (pdfUsableWidth - timeWidth) / float64(timetable.Days)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(timeWidth, 8, "Time", "1", 0, "C", false, 0, "")
	for _, day := range timetable.DayNames {
		pdf.CellFormat(dayWidth, 8, day, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for block := 0; block < timetable.BlocksPerDay; block++ {
		pdf.CellFormat(timeWidth, 7, timetable.BlockLabel(block), "1", 0, "C", false, 0, "")
		for day := 0; day < timetable.Days; day++ {
			pdf.CellFormat(dayWidth, 7, trunc(stackText(g, day, block), 38), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render schedule pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSchedulePDF writes the landscape table to path.
func WriteSchedulePDF(path string, g *timetable.Grid, title string) error {
	raw, err := SchedulePDF(g, title)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
