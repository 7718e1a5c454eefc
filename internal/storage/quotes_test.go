package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

func sampleQuote() *model.Quote {
	return &model.Quote{
		ID:          "DQ20250314092653-8f3a2c1d",
		GeneratedAt: time.Date(2025, 3, 14, 9, 26, 53, 123456789, time.UTC),
		Metadata: model.Metadata{
			SchemaVersion:    "1.0",
			Version:          "test",
			GeneratedBy:      "renovation-quote",
			AlgorithmVersion: "2.0",
		},
		Requirement: model.RequirementRecord{
			Location:        "paris",
			Quality:         model.QualityStandard,
			OriginalText:    "4m² bathroom in Paris with tiles and plumbing",
			Tasks:           []model.TaskType{model.TaskTiles, model.TaskPlumbing},
			Size:            4,
			BudgetConscious: false,
		},
		TaskPrices: []model.TaskPrice{
			{Task: model.TaskTiles, Materials: 1067.04, Labor: 3012.75, Total: 4079.79, LocationMultiplier: 1.3},
			{Task: model.TaskPlumbing, Materials: 100, Labor: 200, Total: 300, LocationMultiplier: 1, Error: "calculation failed"},
		},
		Schedule: model.Schedule{
			TaskHours:   map[model.TaskType]float64{model.TaskTiles: 51.5, model.TaskPlumbing: 18},
			TotalHours:  69.5,
			WorkingDays: 9,
			BufferDays:  1.8,
			TotalDays:   10.8,
		},
		Confidence: model.ConfidenceDetail{
			Severity:    "high",
			Flags:       []string{"suspiciously_high"},
			Suggestions: []string{"Review pricing calculations - prices seem unusually high"},
		},
		LaborTotal:             3212.75,
		MaterialsTotal:         1167.04,
		Subtotal:               4379.79,
		VATAmount:              441.98,
		FinalPrice:             6027.21,
		ConfidenceScore:        78.7,
		MarginPercentage:       25,
		LocationMultiplier:     1.3,
		EstimatedDurationHours: 69.5,
	}
}

func TestWriteReadQuote_RoundTrip(t *testing.T) {
	for _, name := range []string{"quote.json", "quote.yaml", "nested/dir/quote.yml"} {
		t.Run(name, func(t *testing.T) {
			q := sampleQuote()
			path := filepath.Join(t.TempDir(), name)

			written, err := WriteQuote(q, path, "")
			require.NoError(t, err)
			assert.Equal(t, path, written)

			got, err := ReadQuote(written)
			require.NoError(t, err)

			assert.Equal(t, q.ID, got.ID)
			assert.Equal(t, q.FinalPrice, got.FinalPrice) //nolint:testifylint // exact round trip
			assert.Equal(t, q.Subtotal, got.Subtotal)     //nolint:testifylint // exact round trip
			assert.Equal(t, q.VATAmount, got.VATAmount)   //nolint:testifylint // exact round trip
			if diff := cmp.Diff(q, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteQuote_DefaultPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "quotes")
	q := sampleQuote()

	written, err := WriteQuote(q, "", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quote_"+q.ID+".json"), written)

	info, err := os.Stat(written)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestWriteQuote_AppendsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-quote")

	written, err := WriteQuote(sampleQuote(), path, "")
	require.NoError(t, err)
	assert.Equal(t, path+".json", written)
}

func TestWriteQuote_Errors(t *testing.T) {
	_, err := WriteQuote(nil, "x.json", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPersistence))
	assert.True(t, errors.Is(err, ErrNilParameter))

	q := sampleQuote()
	q.ID = ""
	_, err = WriteQuote(q, "x.json", "")
	assert.True(t, errors.Is(err, ErrInvalidQuote))

	_, err = WriteQuote(sampleQuote(), "", "")
	assert.True(t, errors.Is(err, ErrEmptyString))

	// A regular file where a directory is expected.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	original := sampleQuote()
	_, err = WriteQuote(original, filepath.Join(blocker, "quote.json"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPersistence))
	assert.Empty(t, cmp.Diff(sampleQuote(), original))
}

func TestReadQuote_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadQuote(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, common.ErrPersistence))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = ReadQuote(bad)
	assert.True(t, errors.Is(err, common.ErrPersistence))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("final_price: 10\n"), 0o600))
	_, err = ReadQuote(empty)
	assert.True(t, errors.Is(err, ErrInvalidQuote))

	_, err = ReadQuote(" ")
	assert.True(t, errors.Is(err, ErrEmptyString))
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestEncode_YAMLUsesSnakeCase(t *testing.T) {
	data, err := Encode(sampleQuote(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quote_id: DQ20250314092653-8f3a2c1d")
	assert.Contains(t, string(data), "final_price: 6027.21")
}
