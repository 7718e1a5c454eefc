// Package confidence rates how much an estimate can be trusted.
package confidence

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// ReferenceArea is the floor area used to express a final price per m² in
// the price plausibility check. It is fixed and does not follow the
// requirement's size.
const ReferenceArea = 4.0

// Weights of the five sub-scores.
const (
	WeightSize       = 0.15
	WeightLocation   = 0.10
	WeightTasks      = 0.20
	WeightPrice      = 0.35
	WeightComplexity = 0.20
)

const (
	flagPenaltyStep = 0.05
	flagPenaltyMax  = 0.20
)

// SizeBracket scores sizes in [Min, Max).
type SizeBracket struct {
	Flag  Flag
	Min   float64
	Max   float64
	Score float64
}

// PriceBracket scores price ratios up to and including Ratio.
type PriceBracket struct {
	Flag  Flag
	Ratio float64
	Score float64
}

// ComplexityTier groups tasks that share a complexity score.
type ComplexityTier struct {
	Name  string
	Tasks []model.TaskType
	Score float64
}

// Config holds every table the scorer consults.
type Config struct {
	Locations        map[string]float64
	Historical       map[model.TaskType]model.HistoricalRange
	SizeBrackets     []SizeBracket
	PriceBrackets    []PriceBracket
	ComplexityTiers  []ComplexityTier
	EssentialTasks   []model.TaskType
	DefaultLocation  float64
	UnclassifiedTask float64
	AbovePriceScore  float64
}

// DefaultConfig returns the reference scoring tables.
func DefaultConfig() Config {
	return Config{
		SizeBrackets: []SizeBracket{
			{Min: math.Inf(-1), Max: 2, Score: 0.7, Flag: FlagUnusuallySmall},
			{Min: 2, Max: 4, Score: 0.9},
			{Min: 4, Max: 8, Score: 1.0},
			{Min: 8, Max: 12, Score: 0.95},
			{Min: 12, Max: math.Inf(1), Score: 0.8, Flag: FlagUnusuallyLarge},
		},
		Locations: map[string]float64{
			"marseille":   1.0,
			"paris":       0.95,
			"lyon":        0.9,
			"toulouse":    0.9,
			"nice":        0.9,
			"nantes":      0.9,
			"strasbourg":  0.9,
			"montpellier": 0.9,
		},
		DefaultLocation: 0.8,
		EssentialTasks:  []model.TaskType{model.TaskPlumbing, model.TaskTiles},
		PriceBrackets: []PriceBracket{
			{Ratio: 0.5, Score: 0.6, Flag: FlagSuspiciouslyLow},
			{Ratio: 0.8, Score: 0.8, Flag: FlagBelowAverage},
			{Ratio: 1.0, Score: 1.0},
			{Ratio: 1.3, Score: 0.9, Flag: FlagAboveAverage},
			{Ratio: 1.8, Score: 0.7, Flag: FlagSuspiciouslyHigh},
		},
		AbovePriceScore: 0.7,
		ComplexityTiers: []ComplexityTier{
			{Name: "simple", Tasks: []model.TaskType{model.TaskPainting, model.TaskVanity}, Score: 0.9},
			{Name: "moderate", Tasks: []model.TaskType{model.TaskFlooring, model.TaskElectrical}, Score: 0.95},
			{Name: "complex", Tasks: []model.TaskType{model.TaskTiles, model.TaskPlumbing}, Score: 0.85},
		},
		UnclassifiedTask: 0.8,
		Historical: map[model.TaskType]model.HistoricalRange{
			model.TaskTiles:      {Min: 35, Max: 65, Avg: 50},
			model.TaskPlumbing:   {Min: 120, Max: 200, Avg: 160},
			model.TaskPainting:   {Min: 6, Max: 12, Avg: 9},
			model.TaskFlooring:   {Min: 25, Max: 45, Avg: 35},
			model.TaskVanity:     {Min: 180, Max: 300, Avg: 240},
			model.TaskElectrical: {Min: 35, Max: 60, Avg: 48},
		},
	}
}

// Assessment is the result of scoring one estimate. MissingTasks lists the
// essential tasks behind FlagMissingEssentialTasks.
type Assessment struct {
	Flags        []Flag
	MissingTasks []model.TaskType
	Score        float64
}

// Labels renders the flags as strings, naming the missing tasks on the
// missing_essential_tasks flag.
func (a Assessment) Labels() []string {
	out := make([]string, len(a.Flags))
	for i, f := range a.Flags {
		out[i] = a.label(f)
	}
	return out
}

// Categories groups the flag labels by category. Every category is present.
func (a Assessment) Categories() map[string][]string {
	summary := Summarize(a.Flags)
	out := make(map[string][]string, len(summary.Categories))
	for c, flags := range summary.Categories {
		labels := make([]string, len(flags))
		for i, f := range flags {
			labels[i] = a.label(f)
		}
		out[string(c)] = labels
	}
	return out
}

func (a Assessment) label(f Flag) string {
	if f != FlagMissingEssentialTasks || len(a.MissingTasks) == 0 {
		return string(f)
	}
	names := make([]string, len(a.MissingTasks))
	for i, t := range a.MissingTasks {
		names[i] = string(t)
	}
	return string(f) + ": " + strings.Join(names, ", ")
}

// Scorer computes confidence scores. Scoring keeps no state between calls.
type Scorer struct {
	config Config
	mu     sync.RWMutex
}

// New creates a scorer with the default tables.
func New() *Scorer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a scorer with custom tables.
func NewWithConfig(config Config) *Scorer {
	return &Scorer{config: config}
}

// Score rates an estimate between 0 and 100 and lists the anomalies found.
func (s *Scorer) Score(req model.RequirementRecord, prices []model.TaskPrice, finalPrice float64) Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var flags []Flag
	collect := func(score float64, fired []Flag) float64 {
		flags = append(flags, fired...)
		return score
	}

	missing := s.missingEssentials(req)
	weighted := collect(s.sizeScore(req.Size))*WeightSize +
		s.locationScore(req.Location)*WeightLocation +
		collect(s.taskScore(req.Tasks, missing))*WeightTasks +
		collect(s.priceScore(prices, finalPrice))*WeightPrice +
		s.complexityScore(req.Tasks)*WeightComplexity

	penalty := math.Min(float64(len(flags))*flagPenaltyStep, flagPenaltyMax)
	score := weighted * 100 * (1 - penalty)
	score = math.Min(math.Max(score, 0), 100)

	a := Assessment{Score: common.Round1(score), Flags: flags}
	if slices.Contains(flags, FlagMissingEssentialTasks) {
		a.MissingTasks = missing
	}
	return a
}

func (s *Scorer) sizeScore(size float64) (float64, []Flag) {
	for _, b := range s.config.SizeBrackets {
		if size >= b.Min && size < b.Max {
			return b.Score, flagList(b.Flag)
		}
	}
	return 0.7, []Flag{FlagUnusuallyLarge}
}

func (s *Scorer) locationScore(location string) float64 {
	if score, ok := s.config.Locations[location]; ok {
		return score
	}
	return s.config.DefaultLocation
}

func (s *Scorer) missingEssentials(req model.RequirementRecord) []model.TaskType {
	var missing []model.TaskType
	for _, essential := range s.config.EssentialTasks {
		if !req.HasTask(essential) {
			missing = append(missing, essential)
		}
	}
	return missing
}

func (s *Scorer) taskScore(tasks, missing []model.TaskType) (float64, []Flag) {
	if len(tasks) == 0 {
		return 0.5, []Flag{FlagNoTasksDetected}
	}

	var flags []Flag
	if len(tasks) == 1 {
		flags = append(flags, FlagSingleTaskProject)
	}
	if len(tasks) > 5 {
		flags = append(flags, FlagManyTasks)
	}
	if len(missing) > 0 {
		flags = append(flags, FlagMissingEssentialTasks)
	}

	switch {
	case len(tasks) <= 2:
		return 0.8, flags
	case len(tasks) <= 4:
		return 0.9, flags
	default:
		return 0.85, flags
	}
}

// priceScore compares the price per reference area with the sum of the
// historical per-task averages.
func (s *Scorer) priceScore(prices []model.TaskPrice, finalPrice float64) (float64, []Flag) {
	if len(prices) == 0 {
		return 0.5, nil
	}

	perArea := finalPrice / ReferenceArea

	var blended float64
	for _, r := range s.config.Historical {
		blended += r.Avg
	}

	ratio := 1.0
	if blended > 0 {
		ratio = perArea / blended
	}

	for _, b := range s.config.PriceBrackets {
		if ratio <= b.Ratio {
			return b.Score, flagList(b.Flag)
		}
	}
	return s.config.AbovePriceScore, []Flag{FlagSuspiciouslyHigh}
}

func (s *Scorer) complexityScore(tasks []model.TaskType) float64 {
	if len(tasks) == 0 {
		return 0.5
	}

	var sum float64
	for _, task := range tasks {
		sum += s.taskComplexity(task)
	}
	return sum / float64(len(tasks))
}

func (s *Scorer) taskComplexity(task model.TaskType) float64 {
	for _, tier := range s.config.ComplexityTiers {
		for _, t := range tier.Tasks {
			if t == task {
				return tier.Score
			}
		}
	}
	return s.config.UnclassifiedTask
}

// HistoricalPricing returns a copy of the historical price table.
func (s *Scorer) HistoricalPricing() map[model.TaskType]model.HistoricalRange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.TaskType]model.HistoricalRange, len(s.config.Historical))
	for k, v := range s.config.Historical {
		out[k] = v
	}
	return out
}

// ValidateCalibration checks the historical pricing and location confidence
// tables of cal without applying them.
func (s *Scorer) ValidateCalibration(cal model.Calibration) error {
	if err := validateHistorical(cal.HistoricalPricing); err != nil {
		return err
	}
	return validateLocations(cal.LocationConfidence)
}

func validateHistorical(ranges map[model.TaskType]model.HistoricalRange) error {
	for task, r := range ranges {
		if !task.Valid() {
			return fmt.Errorf("%w: unknown task %q", common.ErrInvalidConfig, task)
		}
		if r.Min > r.Max || r.Avg < 0 {
			return fmt.Errorf("%w: inconsistent historical range for %s", common.ErrInvalidConfig, task)
		}
	}
	return nil
}

func validateLocations(scores map[string]float64) error {
	for loc, score := range scores {
		if score < 0 || score > 1 || math.IsNaN(score) {
			return fmt.Errorf("%w: location confidence %v for %q outside [0,1]", common.ErrInvalidConfig, score, loc)
		}
	}
	return nil
}

// UpdateHistoricalPricing replaces the historical range of the given tasks.
func (s *Scorer) UpdateHistoricalPricing(ranges map[model.TaskType]model.HistoricalRange) error {
	if err := validateHistorical(ranges); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for task, r := range ranges {
		s.config.Historical[task] = r
	}
	return nil
}

// UpdateLocations replaces the confidence of the given locations. Scores
// must lie in [0,1].
func (s *Scorer) UpdateLocations(scores map[string]float64) error {
	if err := validateLocations(scores); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.Locations == nil {
		s.config.Locations = make(map[string]float64, len(scores))
	}
	for loc, score := range scores {
		s.config.Locations[strings.ToLower(loc)] = score
	}
	return nil
}

func flagList(f Flag) []Flag {
	if f == "" {
		return nil
	}
	return []Flag{f}
}
