package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/renovation-quote/internal/model"
)

// blendedAverage is the sum of the default historical averages.
const blendedAverage = 542.0

func somePrices() []model.TaskPrice {
	return []model.TaskPrice{{Task: model.TaskTiles, Materials: 100, Labor: 200, Total: 300}}
}

func TestScore_TypicalProject(t *testing.T) {
	s := New()
	req := model.RequirementRecord{
		Location: "marseille",
		Size:     4,
		Tasks:    []model.TaskType{model.TaskTiles, model.TaskPlumbing},
	}

	got := s.Score(req, somePrices(), blendedAverage*ReferenceArea)

	assert.InDelta(t, 93.0, got.Score, 0.001)
	assert.Empty(t, got.Flags)
}

func TestScore_PenalizesFlags(t *testing.T) {
	s := New()
	req := model.RequirementRecord{
		Location: "lille",
		Size:     1.5,
		Tasks:    []model.TaskType{model.TaskPainting},
	}

	got := s.Score(req, nil, 0)

	assert.Equal(t, []Flag{FlagUnusuallySmall, FlagSingleTaskProject, FlagMissingEssentialTasks}, got.Flags)
	assert.Equal(t, []model.TaskType{model.TaskPlumbing, model.TaskTiles}, got.MissingTasks)
	assert.InDelta(t, 59.5, got.Score, 0.001)
}

func TestAssessment_LabelsNameMissingTasks(t *testing.T) {
	s := New()
	req := model.RequirementRecord{
		Location: "marseille",
		Size:     4,
		Tasks:    []model.TaskType{model.TaskTiles, model.TaskPainting},
	}

	got := s.Score(req, somePrices(), blendedAverage*ReferenceArea)

	assert.Equal(t, []string{"missing_essential_tasks: plumbing"}, got.Labels())
	assert.Equal(t, map[string][]string{
		"size_issues":     {},
		"task_issues":     {"missing_essential_tasks: plumbing"},
		"price_issues":    {},
		"location_issues": {},
	}, got.Categories())
}

func TestScore_NoTasks(t *testing.T) {
	s := New()
	req := model.RequirementRecord{Location: "marseille", Size: 4}

	got := s.Score(req, nil, 0)

	assert.Equal(t, []Flag{FlagNoTasksDetected}, got.Flags)
	assert.Empty(t, got.MissingTasks)
	assert.InDelta(t, 59.35, got.Score, 0.06)
}

func TestScore_Bounded(t *testing.T) {
	s := New()
	prices := somePrices()

	for _, size := range []float64{0, 0.5, 4, 11.9, 12, 500} {
		for _, final := range []float64{0, 10, 2168, 1e6} {
			for _, tasks := range [][]model.TaskType{nil, {model.TaskVanity}, model.AllTasks()} {
				req := model.RequirementRecord{Location: "paris", Size: size, Tasks: tasks}
				got := s.Score(req, prices, final)
				assert.GreaterOrEqual(t, got.Score, 0.0)
				assert.LessOrEqual(t, got.Score, 100.0)
			}
		}
	}
}

func TestScore_IsRepeatable(t *testing.T) {
	s := New()
	req := model.RequirementRecord{Location: "nice", Size: 1, Tasks: []model.TaskType{model.TaskPainting}}

	first := s.Score(req, somePrices(), 100)
	second := s.Score(req, somePrices(), 100)

	assert.Equal(t, first, second)
}

func TestSizeScore(t *testing.T) {
	s := New()
	tests := []struct {
		size  float64
		score float64
		flags []Flag
	}{
		{size: 1.9, score: 0.7, flags: []Flag{FlagUnusuallySmall}},
		{size: 2, score: 0.9},
		{size: 3.99, score: 0.9},
		{size: 4, score: 1.0},
		{size: 8, score: 0.95},
		{size: 12, score: 0.8, flags: []Flag{FlagUnusuallyLarge}},
	}

	for _, tt := range tests {
		score, flags := s.sizeScore(tt.size)
		assert.InDelta(t, tt.score, score, 1e-9, "size %v", tt.size)
		assert.Equal(t, tt.flags, flags, "size %v", tt.size)
	}
}

func TestTaskScore(t *testing.T) {
	s := New()
	tests := []struct {
		name  string
		tasks []model.TaskType
		score float64
		flags []Flag
	}{
		{
			name:  "two essentials",
			tasks: []model.TaskType{model.TaskTiles, model.TaskPlumbing},
			score: 0.8,
		},
		{
			name:  "four tasks",
			tasks: []model.TaskType{model.TaskTiles, model.TaskPlumbing, model.TaskPainting, model.TaskVanity},
			score: 0.9,
		},
		{
			name:  "every task",
			tasks: model.AllTasks(),
			score: 0.85,
			flags: []Flag{FlagManyTasks},
		},
		{
			name:  "missing tiles",
			tasks: []model.TaskType{model.TaskPlumbing, model.TaskPainting, model.TaskFlooring},
			score: 0.9,
			flags: []Flag{FlagMissingEssentialTasks},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := s.missingEssentials(model.RequirementRecord{Tasks: tt.tasks})
			score, flags := s.taskScore(tt.tasks, missing)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.flags, flags)
		})
	}
}

func TestPriceScore(t *testing.T) {
	s := New()
	tests := []struct {
		ratio float64
		score float64
		flags []Flag
	}{
		{ratio: 0.4, score: 0.6, flags: []Flag{FlagSuspiciouslyLow}},
		{ratio: 0.7, score: 0.8, flags: []Flag{FlagBelowAverage}},
		{ratio: 0.95, score: 1.0},
		{ratio: 1.2, score: 0.9, flags: []Flag{FlagAboveAverage}},
		{ratio: 1.5, score: 0.7, flags: []Flag{FlagSuspiciouslyHigh}},
		{ratio: 3, score: 0.7, flags: []Flag{FlagSuspiciouslyHigh}},
	}

	for _, tt := range tests {
		score, flags := s.priceScore(somePrices(), tt.ratio*blendedAverage*ReferenceArea)
		assert.InDelta(t, tt.score, score, 1e-9, "ratio %v", tt.ratio)
		assert.Equal(t, tt.flags, flags, "ratio %v", tt.ratio)
	}

	score, flags := s.priceScore(nil, 5000)
	assert.InDelta(t, 0.5, score, 1e-9)
	assert.Empty(t, flags)
}

func TestComplexityScore(t *testing.T) {
	s := New()

	assert.InDelta(t, 0.5, s.complexityScore(nil), 1e-9)
	assert.InDelta(t, 0.9, s.complexityScore([]model.TaskType{model.TaskPainting, model.TaskVanity}), 1e-9)
	assert.InDelta(t, 0.9, s.complexityScore([]model.TaskType{model.TaskTiles, model.TaskFlooring}), 1e-9)
	assert.InDelta(t, 0.8, s.complexityScore([]model.TaskType{"demolition"}), 1e-9)
}

func TestUpdateHistoricalPricing(t *testing.T) {
	s := New()

	err := s.UpdateHistoricalPricing(map[model.TaskType]model.HistoricalRange{
		model.TaskTiles: {Min: 40, Max: 70, Avg: 55},
	})
	require.NoError(t, err)
	assert.Equal(t, model.HistoricalRange{Min: 40, Max: 70, Avg: 55}, s.HistoricalPricing()[model.TaskTiles])

	err = s.UpdateHistoricalPricing(map[model.TaskType]model.HistoricalRange{
		"roofing": {Min: 1, Max: 2, Avg: 1.5},
	})
	require.Error(t, err)

	err = s.UpdateHistoricalPricing(map[model.TaskType]model.HistoricalRange{
		model.TaskVanity: {Min: 300, Max: 100, Avg: 200},
	})
	require.Error(t, err)
	assert.InDelta(t, 240.0, s.HistoricalPricing()[model.TaskVanity].Avg, 1e-9)

	// Returned map is a copy.
	s.HistoricalPricing()[model.TaskPainting] = model.HistoricalRange{}
	assert.InDelta(t, 9.0, s.HistoricalPricing()[model.TaskPainting].Avg, 1e-9)
}

func TestUpdateLocations(t *testing.T) {
	s := New()
	require.NoError(t, s.UpdateLocations(map[string]float64{"Lille": 0.85}))

	assert.InDelta(t, 0.85, s.locationScore("lille"), 1e-9)
	assert.InDelta(t, 0.8, s.locationScore("brest"), 1e-9)

	require.Error(t, s.UpdateLocations(map[string]float64{"brest": 1.2}))
	assert.InDelta(t, 0.8, s.locationScore("brest"), 1e-9)
}

func TestValidateCalibration(t *testing.T) {
	s := New()

	require.NoError(t, s.ValidateCalibration(model.Calibration{
		LocationConfidence: map[string]float64{"lille": 0.85},
	}))
	require.Error(t, s.ValidateCalibration(model.Calibration{
		LocationConfidence: map[string]float64{"lille": -0.1},
	}))
	require.Error(t, s.ValidateCalibration(model.Calibration{
		HistoricalPricing: map[model.TaskType]model.HistoricalRange{"roofing": {}},
	}))
	assert.InDelta(t, 0.8, s.locationScore("lille"), 1e-9)
}
