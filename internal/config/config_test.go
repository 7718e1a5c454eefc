package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

func yamlViper(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(doc)))
	return v
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("QUOTE_TEST_DIR", "/srv/quotes")

	assert.Empty(t, ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "quotes"), ExpandPath("~/quotes"))
	assert.Equal(t, "/srv/quotes/out", ExpandPath("$QUOTE_TEST_DIR/out"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}

func TestLoadRules_Defaults(t *testing.T) {
	rules, err := LoadRules(viper.New())
	require.NoError(t, err)

	assert.InDelta(t, 1.3, rules.Multiplier("paris"), 1e-9)
	assert.InDelta(t, 1.0, rules.Multiplier("lille"), 1e-9)
	assert.InDelta(t, 0.15, rules.Margins.For(true), 1e-9)
	assert.InDelta(t, 0.25, rules.Margins.For(false), 1e-9)
	assert.Equal(t, 10, rules.PropertyAgeYears)
	assert.InDelta(t, 4.0, rules.DefaultSize, 1e-9)
	assert.Equal(t, WorkValueNone, rules.VATWorkValue)
	assert.Zero(t, rules.WorkValue(4491.05))
}

func TestLoadRules_Overrides(t *testing.T) {
	v := yamlViper(t, `
pricing:
  locations:
    lille: 1.08
  margins:
    budget: 0.10
  property_age_years: 1
  vat_work_value: subtotal
`)

	rules, err := LoadRules(v)
	require.NoError(t, err)

	assert.InDelta(t, 1.08, rules.Multiplier("lille"), 1e-9)
	assert.InDelta(t, 1.3, rules.Multiplier("paris"), 1e-9)
	assert.InDelta(t, 0.10, rules.Margins.Budget, 1e-9)
	assert.InDelta(t, 0.25, rules.Margins.Standard, 1e-9)
	assert.Equal(t, 1, rules.PropertyAgeYears)
	assert.InDelta(t, 4491.05, rules.WorkValue(4491.05), 1e-9)
}

func TestLoadRules_Invalid(t *testing.T) {
	v := yamlViper(t, `
pricing:
  margins:
    standard: 1.5
`)

	_, err := LoadRules(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{name: "no locations", mutate: func(r *Rules) { r.Locations = nil }},
		{name: "zero multiplier", mutate: func(r *Rules) { r.Locations["paris"] = 0 }},
		{name: "unknown base", mutate: func(r *Rules) { r.BaseLocation = "lille" }},
		{name: "negative margin", mutate: func(r *Rules) { r.Margins.Budget = -0.1 }},
		{name: "inverted sizes", mutate: func(r *Rules) { r.MinSize, r.MaxSize = 10, 5 }},
		{name: "default size", mutate: func(r *Rules) { r.DefaultSize = 0 }},
		{name: "property age", mutate: func(r *Rules) { r.PropertyAgeYears = -1 }},
		{name: "work value source", mutate: func(r *Rules) { r.VATWorkValue = "invoice" }},
	}

	require.NoError(t, DefaultRules().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidConfig))
		})
	}
}

const calibrationDoc = `
hourly_rates:
  tiles: 50
material_base_costs:
  painting: 9
fixture_costs:
  shower: 190
historical_pricing:
  tiles:
    min: 40
    max: 70
    avg: 55
location_multipliers:
  lille: 1.08
location_confidence:
  lille: 0.85
vat:
  rates:
    reduced: 0.08
  classifications:
    vanity: reduced
`

func TestLoadCalibration(t *testing.T) {
	cal, err := LoadCalibration(yamlViper(t, calibrationDoc))
	require.NoError(t, err)

	assert.Equal(t, map[model.TaskType]float64{model.TaskTiles: 50}, cal.HourlyRates)
	assert.Equal(t, map[model.TaskType]float64{model.TaskPainting: 9}, cal.MaterialBaseCosts)
	assert.Equal(t, map[string]float64{"shower": 190}, cal.FixtureCosts)
	assert.Equal(t, map[model.TaskType]model.HistoricalRange{
		model.TaskTiles: {Min: 40, Max: 70, Avg: 55},
	}, cal.HistoricalPricing)
	assert.Equal(t, map[string]float64{"lille": 1.08}, cal.LocationMultipliers)
	assert.Equal(t, map[string]float64{"lille": 0.85}, cal.LocationConfidence)
	assert.Equal(t, map[model.VATClass]float64{model.VATReduced: 0.08}, cal.VATRates)
	assert.Equal(t, map[model.TaskType]model.VATClass{model.TaskVanity: model.VATReduced}, cal.VATClasses)
	assert.False(t, cal.Empty())
}

func TestLoadCalibration_Empty(t *testing.T) {
	cal, err := LoadCalibration(viper.New())
	require.NoError(t, err)
	assert.True(t, cal.Empty())
}

func TestLoadCalibration_RejectsUnknownKeys(t *testing.T) {
	docs := map[string]string{
		"task":       "hourly_rates:\n  roofing: 10\n",
		"vat class":  "vat:\n  rates:\n    zero: 0\n",
		"vat target": "vat:\n  classifications:\n    tiles: exempt\n",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCalibration(yamlViper(t, doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidConfig))
		})
	}
}

func TestReadCalibrationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte(calibrationDoc), 0o600))

	cal, v, err := ReadCalibrationFile(path)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 50.0, cal.HourlyRates[model.TaskTiles], 1e-9)

	_, _, err = ReadCalibrationFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, _, err = ReadCalibrationFile("")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestWatchCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hourly_rates:\n  tiles: 50\n"), 0o600))

	_, v, err := ReadCalibrationFile(path)
	require.NoError(t, err)

	var mu sync.Mutex
	var latest model.Calibration
	WatchCalibration(v, nil, func(cal model.Calibration) {
		mu.Lock()
		defer mu.Unlock()
		latest = cal
	})

	require.NoError(t, os.WriteFile(path, []byte("hourly_rates:\n  tiles: 60\n"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return latest.HourlyRates[model.TaskTiles] == 60
	}, 5*time.Second, 20*time.Millisecond)
}
