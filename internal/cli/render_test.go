package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/materials"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

func TestFormatEuro(t *testing.T) {
	tests := map[float64]string{
		0:          "0.00 €",
		5:          "5.00 €",
		820.8:      "820.80 €",
		7750.402:   "7,750.40 €",
		1234567.5:  "1,234,567.50 €",
		-1500.25:   "-1,500.25 €",
		100.005:    "100.01 €",
		999999.999: "1,000,000.00 €",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatEuro(in), "%v", in)
	}
}

func renderQuote() *model.Quote {
	return &model.Quote{
		ID:          "DQ20250314092653-8f3a2c1d",
		GeneratedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Requirement: model.RequirementRecord{
			Location: "marseille",
			Quality:  model.QualityStandard,
			Size:     4,
			Tasks:    []model.TaskType{model.TaskTiles, model.TaskVanity},
		},
		TaskPrices: []model.TaskPrice{
			{Task: model.TaskTiles, Materials: 820.8, Labor: 2317.5, Total: 3138.3, LocationMultiplier: 1},
			{Task: model.TaskVanity, Materials: 100, Labor: 200, Total: 300, LocationMultiplier: 1, Error: "boom"},
		},
		Confidence: model.ConfidenceDetail{
			Severity:    "high",
			Flags:       []string{"suspiciously_high"},
			Suggestions: []string{"Review pricing calculations - prices seem unusually high"},
		},
		Subtotal:         3438.3,
		VATAmount:        373.83,
		FinalPrice:       4765.16,
		MarginPercentage: 25,
		ConfidenceScore:  71.3,
	}
}

func TestRenderQuote(t *testing.T) {
	out := RenderQuote(renderQuote(), RenderOptions{})

	assert.Contains(t, out, "DQ20250314092653-8f3a2c1d")
	assert.Contains(t, out, "marseille")
	assert.Contains(t, out, "tiles, vanity")
	assert.Contains(t, out, "3,138.30 €")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "4,765.16 €")
	assert.Contains(t, out, "Margin 25%")
	assert.Contains(t, out, "71.3/100")
	assert.Contains(t, out, "suspiciously_high")
	assert.NotContains(t, out, "Review pricing calculations")
	assert.NotContains(t, out, "VAT breakdown")
}

func TestRenderQuote_Options(t *testing.T) {
	q := renderQuote()
	b := vat.New().Breakdown(q.TaskPrices, q.Subtotal, 10)

	out := RenderQuote(q, RenderOptions{VAT: &b, Suggestions: true})

	assert.Contains(t, out, "Review pricing calculations")
	assert.Contains(t, out, "VAT breakdown")
	assert.Contains(t, out, "Total VAT "+FormatEuro(b.Total))
}

func TestRenderRates(t *testing.T) {
	out := RenderRates(RatesView{
		Materials: materials.New().Summary(),
		Labor:     labor.New().Summary(),
		VAT:       vat.New().Summary(),
		Rules:     config.DefaultRules(),
	})

	assert.Contains(t, out, "Pricing tables")
	assert.Contains(t, out, "45.00 € / m²")
	assert.Contains(t, out, "440.00 €")
	assert.Contains(t, out, "10.0%")
	assert.Contains(t, out, "×1.30")
	assert.Contains(t, out, "Margins: standard 25%, budget 15%")
}
