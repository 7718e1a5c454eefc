// Package export renders quotes as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// Sheet names.
const (
	QuoteSheet = "Quote"
	VATSheet   = "VAT"
)

const euroFormat = `#,##0.00 "€"`

type styles struct {
	title   int
	header  int
	text    int
	money   int
	label   int
	total   int
	numeric int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	numFmt := euroFormat

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.text, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}); err != nil {
		return s, fmt.Errorf("create text style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	if s.numeric, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}); err != nil {
		return s, fmt.Errorf("create numeric style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, CustomNumFmt: &numFmt}); err != nil {
		return s, fmt.Errorf("create total style: %w", err)
	}
	return s, nil
}

// Workbook renders q as an xlsx document. A nil breakdown omits the VAT sheet.
func Workbook(q *model.Quote, breakdown *vat.Breakdown) ([]byte, error) {
	if q == nil {
		return nil, fmt.Errorf("export: quote is nil")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), QuoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeQuoteSheet(f, st, q); err != nil {
		return nil, err
	}
	if breakdown != nil {
		if err := writeVATSheet(f, st, breakdown); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders q and writes it to path, creating parent directories.
func WriteFile(q *model.Quote, breakdown *vat.Breakdown, path string) error {
	data, err := Workbook(q, breakdown)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeQuoteSheet(f *excelize.File, st styles, q *model.Quote) error {
	sheet := QuoteSheet

	widths := map[string]float64{"A": 18, "B": 16, "C": 16, "D": 16, "E": 14, "F": 40}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.MergeCell(sheet, "A1", "F1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	cells := []struct {
		cell  string
		value any
		style int
	}{
		{"A1", "Renovation quote " + q.ID, st.title},
		{"A2", "Generated", 0},
		{"B2", q.GeneratedAt.Format("2006-01-02 15:04"), 0},
		{"A3", "Location", 0},
		{"B3", sanitizeExcelCell(q.Requirement.Location), 0},
		{"A4", "Size (m²)", 0},
		{"B4", q.Requirement.Size, 0},
		{"A5", "Quality", 0},
		{"B5", string(q.Requirement.Quality), 0},
		{"A6", "Request", 0},
		{"B6", sanitizeExcelCell(q.Requirement.OriginalText), 0},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return fmt.Errorf("set %s: %w", c.cell, err)
		}
		if c.style != 0 {
			if err := f.SetCellStyle(sheet, c.cell, c.cell, c.style); err != nil {
				return fmt.Errorf("style %s: %w", c.cell, err)
			}
		}
	}

	const headerRow = 8
	headers := []string{"Task", "Materials", "Labor", "Total", "Multiplier", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A8", "F8", st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := headerRow + 1
	for _, line := range q.TaskPrices {
		values := []any{string(line.Task), line.Materials, line.Labor, line.Total, line.LocationMultiplier, sanitizeExcelCell(line.Error)}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), st.text)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), st.money)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), st.numeric)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), st.text)
		row++
	}

	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Materials", q.MaterialsTotal},
		{"Labor", q.LaborTotal},
		{"Subtotal", q.Subtotal},
		{"VAT", q.VATAmount},
		{fmt.Sprintf("Final price (margin %.0f%%)", q.MarginPercentage), q.FinalPrice},
	}
	for _, s := range summary {
		label, value := fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row)
		if err := f.SetCellValue(sheet, label, s.label); err != nil {
			return fmt.Errorf("set %s: %w", label, err)
		}
		if err := f.SetCellValue(sheet, value, s.value); err != nil {
			return fmt.Errorf("set %s: %w", value, err)
		}
		_ = f.SetCellStyle(sheet, label, label, st.label)
		_ = f.SetCellStyle(sheet, value, value, st.total)
		row++
	}

	row++
	trailer := []struct {
		label string
		value any
	}{
		{"Confidence", q.ConfidenceScore},
		{"Severity", q.Confidence.Severity},
		{"Duration (days)", q.Schedule.TotalDays},
	}
	for _, t := range trailer {
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.label)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), st.label)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t.value)
		row++
	}
	return nil
}

func writeVATSheet(f *excelize.File, st styles, b *vat.Breakdown) error {
	sheet := VATSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create vat sheet: %w", err)
	}
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "F", 14)

	headers := []any{"Task", "Materials class", "Materials VAT", "Labor class", "Labor VAT", "Total"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write vat header: %w", err)
	}
	_ = f.SetCellStyle(sheet, "A1", "F1", st.header)

	row := 2
	for _, line := range b.ByTask {
		values := []any{
			string(line.Task),
			string(line.Materials.Applied), line.Materials.Amount,
			string(line.Labor.Applied), line.Labor.Amount,
			line.Total,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write vat row %d: %w", row, err)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), st.money)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), st.money)
		row++
	}

	row++
	for _, class := range []model.VATClass{model.VATStandard, model.VATReduced, model.VATSuperReduced} {
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), string(class))
		_ = f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), st.label)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.ByClass[class])
		_ = f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), st.total)
		row++
	}
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "Total")
	_ = f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), st.label)
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.Total)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), st.total)
	return nil
}

// sanitizeExcelCell prefixes values that a spreadsheet would read as a
// formula with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
