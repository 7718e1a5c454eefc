package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

func testQuote() *model.Quote {
	return &model.Quote{
		ID:          "DQ20250314092653-8f3a2c1d",
		GeneratedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Requirement: model.RequirementRecord{
			Location:     "marseille",
			Quality:      model.QualityStandard,
			OriginalText: "=HYPERLINK(\"http://example.com\") tiles",
			Tasks:        []model.TaskType{model.TaskTiles, model.TaskVanity},
			Size:         4,
		},
		TaskPrices: []model.TaskPrice{
			{Task: model.TaskTiles, Materials: 820.8, Labor: 2317.5, Total: 3138.3, LocationMultiplier: 1},
			{Task: model.TaskVanity, Materials: 100, Labor: 200, Total: 300, LocationMultiplier: 1, Error: "calculation failed"},
		},
		MaterialsTotal:   920.8,
		LaborTotal:       2517.5,
		Subtotal:         3438.3,
		VATAmount:        373.83,
		FinalPrice:       4765.16,
		MarginPercentage: 25,
		ConfidenceScore:  71.3,
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWorkbook_QuoteSheet(t *testing.T) {
	data, err := Workbook(testQuote(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{QuoteSheet}, f.GetSheetList())

	assert.Equal(t, "Renovation quote DQ20250314092653-8f3a2c1d", raw(t, f, QuoteSheet, "A1"))
	assert.Equal(t, "marseille", raw(t, f, QuoteSheet, "B3"))
	assert.Equal(t, "'=HYPERLINK(\"http://example.com\") tiles", raw(t, f, QuoteSheet, "B6"))

	assert.Equal(t, "Task", raw(t, f, QuoteSheet, "A8"))
	assert.Equal(t, "tiles", raw(t, f, QuoteSheet, "A9"))
	assert.Equal(t, "820.8", raw(t, f, QuoteSheet, "B9"))
	assert.Equal(t, "2317.5", raw(t, f, QuoteSheet, "C9"))
	assert.Equal(t, "vanity", raw(t, f, QuoteSheet, "A10"))
	assert.Equal(t, "calculation failed", raw(t, f, QuoteSheet, "F10"))

	// Summary starts after one blank row.
	assert.Equal(t, "Materials", raw(t, f, QuoteSheet, "C12"))
	assert.Equal(t, "920.8", raw(t, f, QuoteSheet, "D12"))
	assert.Equal(t, "Final price (margin 25%)", raw(t, f, QuoteSheet, "C16"))
	assert.Equal(t, "4765.16", raw(t, f, QuoteSheet, "D16"))
}

func TestWorkbook_VATSheet(t *testing.T) {
	b := vat.New().Breakdown(testQuote().TaskPrices, 3438.3, 10)

	data, err := Workbook(testQuote(), &b)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{QuoteSheet, VATSheet}, f.GetSheetList())
	assert.Equal(t, "Task", raw(t, f, VATSheet, "A1"))
	assert.Equal(t, "tiles", raw(t, f, VATSheet, "A2"))
	assert.Equal(t, "reduced", raw(t, f, VATSheet, "B2"))
	assert.Equal(t, "vanity", raw(t, f, VATSheet, "A3"))
	assert.Equal(t, "standard", raw(t, f, VATSheet, "D3"))
}

func TestWorkbook_NilQuote(t *testing.T) {
	_, err := Workbook(nil, nil)
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "quote.xlsx")

	require.NoError(t, WriteFile(testQuote(), nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	openWorkbook(t, data)
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"tiles":    "tiles",
		"=1+1":     "'=1+1",
		"+33 6 00": "'+33 6 00",
		"-5":       "'-5",
		"@SUM(A1)": "'@SUM(A1)",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeExcelCell(in))
	}
}
