// Package materials prices the materials a renovation task consumes.
package materials

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// AreaRate prices a task by surface area.
type AreaRate struct {
	Qualities   map[model.Quality]float64
	BasePerM2   float64
	SizeFactor  float64
	Coats       int
	UseWallArea bool
}

// Fixture is one plumbing fixture.
type Fixture struct {
	BaseCost   float64
	SizeFactor float64
}

// FlatRate prices a task as a single unit.
type FlatRate struct {
	Qualities map[model.Quality]float64
	BaseCost  float64
}

// ElectricalRate prices electrical work from a base cost plus outlets.
type ElectricalRate struct {
	BaseCost   float64
	SizeFactor float64
	PerOutlet  float64
}

// Table holds every material price used by the model.
type Table struct {
	Area            map[model.TaskType]AreaRate
	Fixtures        map[string]Fixture
	Vanity          FlatRate
	DefaultFixtures []string
	Electrical      ElectricalRate
	WallHeight      float64
}

// DefaultTable returns the reference material prices.
func DefaultTable() Table {
	return Table{
		Area: map[model.TaskType]AreaRate{
			model.TaskTiles: {
				BasePerM2:   45.0,
				SizeFactor:  0.95,
				UseWallArea: true,
				Qualities: map[model.Quality]float64{
					model.QualityBasic:    0.8,
					model.QualityStandard: 1.0,
					model.QualityPremium:  1.4,
					model.QualityLuxury:   2.0,
				},
			},
			model.TaskPainting: {
				BasePerM2:   8.5,
				SizeFactor:  1.05,
				Coats:       2,
				UseWallArea: true,
				Qualities: map[model.Quality]float64{
					model.QualityBasic:    0.7,
					model.QualityStandard: 1.0,
					model.QualityPremium:  1.3,
					model.QualityLuxury:   1.8,
				},
			},
			model.TaskFlooring: {
				BasePerM2:  32.0,
				SizeFactor: 0.98,
				Qualities: map[model.Quality]float64{
					model.QualityBasic:    0.8,
					model.QualityStandard: 1.0,
					model.QualityPremium:  1.5,
					model.QualityLuxury:   2.0,
				},
			},
		},
		Fixtures: map[string]Fixture{
			"shower": {BaseCost: 180.0, SizeFactor: 0.9},
			"toilet": {BaseCost: 120.0, SizeFactor: 1.0},
			"sink":   {BaseCost: 85.0, SizeFactor: 0.95},
			"bath":   {BaseCost: 350.0, SizeFactor: 1.1},
		},
		// A bath is optional and not part of a standard plumbing job.
		DefaultFixtures: []string{"shower", "toilet", "sink"},
		Vanity: FlatRate{
			BaseCost: 220.0,
			Qualities: map[model.Quality]float64{
				model.QualityBasic:    0.7,
				model.QualityStandard: 1.0,
				model.QualityPremium:  1.6,
				model.QualityLuxury:   2.2,
			},
		},
		Electrical: ElectricalRate{
			BaseCost:   45.0,
			SizeFactor: 1.0,
			PerOutlet:  15.0,
		},
		WallHeight: model.DefaultWallHeight,
	}
}

// Model computes material costs from a Table.
type Model struct {
	table Table
	mu    sync.RWMutex
}

// New creates a model over the default table.
func New() *Model {
	return NewWithTable(DefaultTable())
}

// NewWithTable creates a model over a custom table.
func NewWithTable(table Table) *Model {
	return &Model{table: table}
}

// Cost returns the material cost of a task, rounded to cents.
// Unknown tasks cost nothing.
func (m *Model) Cost(task model.TaskType, size float64, quality model.Quality) (float64, error) {
	if math.IsNaN(size) || math.IsInf(size, 0) || size < 0 {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidSize, size)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var cost float64
	switch task {
	case model.TaskTiles, model.TaskPainting, model.TaskFlooring:
		rate, ok := m.table.Area[task]
		if !ok {
			return 0, nil
		}
		cost = m.areaCost(rate, size, quality)
	case model.TaskPlumbing:
		cost = m.plumbingCost()
	case model.TaskVanity:
		cost = m.table.Vanity.BaseCost * qualityMultiplier(m.table.Vanity.Qualities, quality)
	case model.TaskElectrical:
		e := m.table.Electrical
		cost = e.BaseCost*e.SizeFactor + float64(model.OutletCount(size))*e.PerOutlet
	default:
		return 0, nil
	}

	return common.Round2(cost), nil
}

func (m *Model) areaCost(rate AreaRate, size float64, quality model.Quality) float64 {
	area := size
	if rate.UseWallArea {
		area = model.WallArea(size, m.table.WallHeight)
	}

	cost := area * rate.BasePerM2 * rate.SizeFactor * qualityMultiplier(rate.Qualities, quality)
	if rate.Coats > 0 {
		cost *= float64(rate.Coats)
	}
	return cost
}

// plumbingCost sums the default fixtures. It does not depend on room size.
func (m *Model) plumbingCost() float64 {
	var total float64
	for _, name := range m.table.DefaultFixtures {
		f, ok := m.table.Fixtures[name]
		if !ok {
			continue
		}
		total += f.BaseCost * f.SizeFactor
	}
	return total
}

func qualityMultiplier(multipliers map[model.Quality]float64, quality model.Quality) float64 {
	if mult, ok := multipliers[quality]; ok {
		return mult
	}
	return 1.0
}

// BaseCost returns the headline unit price for a task. For plumbing this is
// the average fixture cost.
func (m *Model) BaseCost(task model.TaskType) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch task {
	case model.TaskTiles, model.TaskPainting, model.TaskFlooring:
		return m.table.Area[task].BasePerM2
	case model.TaskPlumbing:
		if len(m.table.Fixtures) == 0 {
			return 0
		}
		var sum float64
		for _, f := range m.table.Fixtures {
			sum += f.BaseCost
		}
		return sum / float64(len(m.table.Fixtures))
	case model.TaskVanity:
		return m.table.Vanity.BaseCost
	case model.TaskElectrical:
		return m.table.Electrical.BaseCost
	default:
		return 0
	}
}

// SummaryLine describes one task's base pricing.
type SummaryLine struct {
	Task       model.TaskType
	Unit       string
	BaseCost   float64
	SizeFactor float64
}

// Summary reports base pricing for every task in canonical order.
func (m *Model) Summary() []SummaryLine {
	lines := make([]SummaryLine, 0, len(model.AllTasks()))
	for _, task := range model.AllTasks() {
		line := SummaryLine{Task: task, BaseCost: m.BaseCost(task), SizeFactor: 1.0}

		m.mu.RLock()
		switch task {
		case model.TaskTiles, model.TaskPainting, model.TaskFlooring:
			line.Unit = "m²"
			line.SizeFactor = m.table.Area[task].SizeFactor
		case model.TaskPlumbing:
			line.Unit = "fixture"
		case model.TaskVanity:
			line.Unit = "unit"
		case model.TaskElectrical:
			line.Unit = "project"
			line.SizeFactor = m.table.Electrical.SizeFactor
		}
		m.mu.RUnlock()

		lines = append(lines, line)
	}
	return lines
}

// ValidateCalibration checks the material tables of cal without applying
// them.
func (m *Model) ValidateCalibration(cal model.Calibration) error {
	if err := validateBaseCosts(cal.MaterialBaseCosts); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validateFixtureCosts(cal.FixtureCosts)
}

func validateBaseCosts(costs map[model.TaskType]float64) error {
	for task, cost := range costs {
		if cost < 0 {
			return fmt.Errorf("%w: negative base cost %v for %s", common.ErrInvalidConfig, cost, task)
		}
		if task == model.TaskPlumbing || !task.Valid() {
			return fmt.Errorf("%w: cannot set base cost for %q", common.ErrInvalidConfig, task)
		}
	}
	return nil
}

// validateFixtureCosts must be called with m.mu held.
func (m *Model) validateFixtureCosts(costs map[string]float64) error {
	for _, name := range slices.Sorted(maps.Keys(costs)) {
		if _, ok := m.table.Fixtures[name]; !ok {
			return fmt.Errorf("%w: unknown fixture %q", common.ErrInvalidConfig, name)
		}
		if costs[name] < 0 {
			return fmt.Errorf("%w: negative cost for fixture %q", common.ErrInvalidConfig, name)
		}
	}
	return nil
}

// UpdateBaseCosts replaces the base price of the given tasks. Plumbing is
// priced per fixture and is updated with UpdateFixtureCosts instead.
func (m *Model) UpdateBaseCosts(costs map[model.TaskType]float64) error {
	if err := validateBaseCosts(costs); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for task, cost := range costs {
		switch task {
		case model.TaskTiles, model.TaskPainting, model.TaskFlooring:
			rate := m.table.Area[task]
			rate.BasePerM2 = cost
			m.table.Area[task] = rate
		case model.TaskVanity:
			m.table.Vanity.BaseCost = cost
		case model.TaskElectrical:
			m.table.Electrical.BaseCost = cost
		}
	}
	return nil
}

// UpdateFixtureCosts replaces the base cost of known plumbing fixtures.
func (m *Model) UpdateFixtureCosts(costs map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateFixtureCosts(costs); err != nil {
		return err
	}
	for name, cost := range costs {
		f := m.table.Fixtures[name]
		f.BaseCost = cost
		m.table.Fixtures[name] = f
	}
	return nil
}
