// Package labor estimates working hours and labor cost for renovation tasks.
package labor

import (
	"fmt"
	"math"
	"sync"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// HoursPerDay is the length of a billable working day.
const HoursPerDay = 8.0

// TimeTable holds the time constants, in hours, for every task.
type TimeTable struct {
	TilesPerM2          float64
	TilesSetup          float64
	TilesCleanup        float64
	PlumbingFixtures    map[string]float64
	PlumbingDefault     []string
	PlumbingSetup       float64
	PlumbingTesting     float64
	PaintingPerM2       float64
	PaintingPrep        float64
	PaintingCleanup     float64
	FlooringPerM2       float64
	FlooringPrep        float64
	FlooringCleanup     float64
	VanityBase          float64
	VanityPlumbing      float64
	VanitySetup         float64
	ElectricalBase      float64
	ElectricalPerOutlet float64
	ElectricalTesting   float64
	WallHeight          float64
}

// Rates holds the money side of the labor model.
type Rates struct {
	Hourly            map[model.TaskType]float64
	ComplexityFactors map[model.TaskType]float64
	Complexity        map[model.Complexity]float64
}

// DefaultTimeTable returns the reference time estimates.
func DefaultTimeTable() TimeTable {
	return TimeTable{
		TilesPerM2:   2.5,
		TilesSetup:   2.0,
		TilesCleanup: 1.5,
		PlumbingFixtures: map[string]float64{
			"shower": 8.0,
			"toilet": 4.0,
			"sink":   3.0,
			"bath":   6.0,
		},
		PlumbingDefault:     []string{"shower", "toilet", "sink"},
		PlumbingSetup:       1.0,
		PlumbingTesting:     2.0,
		PaintingPerM2:       0.3,
		PaintingPrep:        1.5,
		PaintingCleanup:     1.0,
		FlooringPerM2:       1.8,
		FlooringPrep:        2.0,
		FlooringCleanup:     1.0,
		VanityBase:          3.0,
		VanityPlumbing:      1.5,
		VanitySetup:         0.5,
		ElectricalBase:      2.0,
		ElectricalPerOutlet: 0.5,
		ElectricalTesting:   1.0,
		WallHeight:          model.DefaultWallHeight,
	}
}

// DefaultRates returns the reference hourly rates and multipliers.
func DefaultRates() Rates {
	return Rates{
		Hourly: map[model.TaskType]float64{
			model.TaskTiles:      45.0,
			model.TaskPlumbing:   55.0,
			model.TaskPainting:   35.0,
			model.TaskFlooring:   40.0,
			model.TaskVanity:     42.0,
			model.TaskElectrical: 48.0,
		},
		// Informational difficulty ratings; they do not enter the cost formula.
		ComplexityFactors: map[model.TaskType]float64{
			model.TaskTiles:      1.2,
			model.TaskPlumbing:   1.4,
			model.TaskPainting:   0.9,
			model.TaskFlooring:   1.1,
			model.TaskVanity:     0.8,
			model.TaskElectrical: 1.3,
		},
		Complexity: map[model.Complexity]float64{
			model.ComplexitySimple:   0.8,
			model.ComplexityStandard: 1.0,
			model.ComplexityComplex:  1.3,
		},
	}
}

// Model computes task durations and labor cost.
type Model struct {
	rates Rates
	times TimeTable
	mu    sync.RWMutex
}

// New creates a labor model with the default tables.
func New() *Model {
	return NewWithTables(DefaultTimeTable(), DefaultRates())
}

// NewWithTables creates a labor model with custom tables.
func NewWithTables(times TimeTable, rates Rates) *Model {
	return &Model{times: times, rates: rates}
}

// Duration returns the hours a task takes, rounded to one decimal.
// Unknown tasks take no time.
func (m *Model) Duration(task model.TaskType, size float64, complexity model.Complexity) (float64, error) {
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidSize, size)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.duration(task, size, complexity), nil
}

func (m *Model) duration(task model.TaskType, size float64, complexity model.Complexity) float64 {
	t := m.times

	var hours float64
	switch task {
	case model.TaskTiles:
		hours = model.WallArea(size, t.WallHeight)*t.TilesPerM2 + t.TilesSetup + t.TilesCleanup
	case model.TaskPlumbing:
		// Fixed fixture set: plumbing time does not scale with room size.
		for _, name := range t.PlumbingDefault {
			hours += t.PlumbingFixtures[name]
		}
		hours += t.PlumbingSetup + t.PlumbingTesting
	case model.TaskPainting:
		// Drying time is not billable.
		hours = model.WallArea(size, t.WallHeight)*t.PaintingPerM2 + t.PaintingPrep + t.PaintingCleanup
	case model.TaskFlooring:
		hours = size*t.FlooringPerM2 + t.FlooringPrep + t.FlooringCleanup
	case model.TaskVanity:
		hours = t.VanityBase + t.VanityPlumbing + t.VanitySetup
	case model.TaskElectrical:
		hours = t.ElectricalBase + float64(model.OutletCount(size))*t.ElectricalPerOutlet + t.ElectricalTesting
	default:
		return 0
	}

	return common.Round1(hours * m.complexityMultiplier(complexity))
}

// Cost returns the labor cost of a task, rounded to cents. The complexity
// multiplier scales both the hours and the hourly price.
func (m *Model) Cost(task model.TaskType, size float64, complexity model.Complexity) (float64, error) {
	hours, err := m.Duration(task, size, complexity)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rate, ok := m.rates.Hourly[task]
	if !ok {
		return 0, nil
	}
	return common.Round2(hours * rate * m.complexityMultiplier(complexity)), nil
}

func (m *Model) complexityMultiplier(c model.Complexity) float64 {
	if mult, ok := m.rates.Complexity[c]; ok {
		return mult
	}
	return 1.0
}

// DailyRate returns the price of one working day on a task.
func (m *Model) DailyRate(task model.TaskType) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rates.Hourly[task] * HoursPerDay
}

// ProjectDuration is the calendar estimate for a set of tasks.
type ProjectDuration struct {
	TaskBreakdown map[model.TaskType]float64
	TotalHours    float64
	WorkingDays   int
	BufferDays    float64
	TotalDays     float64
}

// EstimateProjectDuration sums standard-complexity task hours and converts
// them into working days plus a coordination buffer of at least one day.
func (m *Model) EstimateProjectDuration(tasks []model.TaskType, size float64) (ProjectDuration, error) {
	pd := ProjectDuration{TaskBreakdown: make(map[model.TaskType]float64, len(tasks))}

	for _, task := range tasks {
		hours, err := m.Duration(task, size, model.ComplexityStandard)
		if err != nil {
			return ProjectDuration{}, fmt.Errorf("duration for %s: %w", task, err)
		}
		pd.TaskBreakdown[task] = hours
		pd.TotalHours += hours
	}

	pd.TotalHours = common.Round1(pd.TotalHours)
	pd.WorkingDays = int(math.Ceil(pd.TotalHours / HoursPerDay))
	pd.BufferDays = common.Round1(math.Max(1, float64(pd.WorkingDays)*0.2))
	pd.TotalDays = common.Round1(float64(pd.WorkingDays) + pd.BufferDays)

	return pd, nil
}

// RateLine describes the labor pricing of one task.
type RateLine struct {
	Task             model.TaskType
	Hourly           float64
	Daily            float64
	ComplexityFactor float64
}

// Summary reports hourly and daily rates for every task in canonical order.
func (m *Model) Summary() []RateLine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := make([]RateLine, 0, len(model.AllTasks()))
	for _, task := range model.AllTasks() {
		lines = append(lines, RateLine{
			Task:             task,
			Hourly:           m.rates.Hourly[task],
			Daily:            m.rates.Hourly[task] * HoursPerDay,
			ComplexityFactor: m.rates.ComplexityFactors[task],
		})
	}
	return lines
}

// ValidateCalibration checks the hourly rates of cal without applying them.
func (m *Model) ValidateCalibration(cal model.Calibration) error {
	return validateHourlyRates(cal.HourlyRates)
}

func validateHourlyRates(rates map[model.TaskType]float64) error {
	for task, rate := range rates {
		if !task.Valid() {
			return fmt.Errorf("%w: unknown task %q", common.ErrInvalidConfig, task)
		}
		if rate < 0 {
			return fmt.Errorf("%w: negative hourly rate %v for %s", common.ErrInvalidConfig, rate, task)
		}
	}
	return nil
}

// UpdateHourlyRates replaces the hourly rate of the given tasks.
func (m *Model) UpdateHourlyRates(rates map[model.TaskType]float64) error {
	if err := validateHourlyRates(rates); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for task, rate := range rates {
		m.rates.Hourly[task] = rate
	}
	return nil
}
