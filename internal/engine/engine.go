// Package engine composes requirement extraction, cost models, VAT rules and
// confidence scoring into a priced renovation quote.
package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/confidence"
	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/extraction"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/materials"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// Fallback values used when a task cannot be priced.
const (
	FallbackMaterials = 100.0
	FallbackLabor     = 200.0
)

// Document metadata stamped on every quote.
const (
	SchemaVersion    = "1.0"
	AlgorithmVersion = "2.0"
	GeneratedBy      = "renovation-quote"
)

// Dependencies are the calculators the engine composes.
type Dependencies struct {
	Extractor  RequirementExtractor
	Materials  MaterialPricer
	Labor      LaborPricer
	Tax        TaxCalculator
	Confidence ConfidenceAssessor
}

// DefaultDependencies builds the reference calculators for the given rules.
func DefaultDependencies(rules config.Rules, logger *slog.Logger) Dependencies {
	ext := extraction.DefaultConfig()
	ext.DefaultLocation = rules.BaseLocation
	ext.DefaultSize = rules.DefaultSize
	ext.MinSize = rules.MinSize
	ext.MaxSize = rules.MaxSize
	for _, loc := range slices.Sorted(maps.Keys(rules.Locations)) {
		if !slices.Contains(ext.Locations, loc) {
			ext.Locations = append(ext.Locations, loc)
		}
	}

	return Dependencies{
		Extractor:  extraction.NewWithConfig(ext, logger),
		Materials:  materials.New(),
		Labor:      labor.New(),
		Tax:        vat.New(),
		Confidence: confidence.New(),
	}
}

// Config holds engine options that are not pricing rules.
type Config struct {
	Logger  *slog.Logger
	Now     func() time.Time
	Version string
}

// Engine generates quotes. Generation may run concurrently; Recalibrate is
// the only way to change pricing tables and excludes generation while it
// runs.
type Engine struct {
	deps    Dependencies
	logger  *slog.Logger
	now     func() time.Time
	version string
	rules   config.Rules
	mu      sync.RWMutex
}

// New creates an engine with the reference calculators.
func New(rules config.Rules, logger *slog.Logger) *Engine {
	return NewWithDependencies(DefaultDependencies(rules, logger), rules, Config{Logger: logger})
}

// NewWithDependencies creates an engine with custom calculators.
func NewWithDependencies(deps Dependencies, rules config.Rules, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Engine{
		deps:    deps,
		rules:   rules,
		logger:  cfg.Logger,
		now:     cfg.Now,
		version: cfg.Version,
	}
}

// Rules returns a copy of the pricing rules in force.
func (e *Engine) Rules() config.Rules {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r := e.rules
	r.Locations = maps.Clone(e.rules.Locations)
	return r
}

// Generate prices a free-text renovation request. Validation failures abort
// before any pricing; tasks that fail to price are replaced by fallback
// lines and the quote is still produced.
func (e *Engine) Generate(text string) (*model.Quote, error) {
	req, err := e.deps.Extractor.Extract(text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract requirements: %w", err)
	}
	req.Tasks = model.SortTasks(req.Tasks)

	e.mu.RLock()
	defer e.mu.RUnlock()

	multiplier := e.rules.Multiplier(req.Location)

	prices := make([]model.TaskPrice, 0, len(req.Tasks))
	var laborTotal, materialsTotal float64
	for _, task := range req.Tasks {
		line, err := e.priceTask(task, req, multiplier)
		if err != nil {
			e.logger.Warn("task pricing failed, using fallback",
				"task", task,
				"error", err)
			line = fallbackLine(task, err)
		}
		prices = append(prices, line)
		laborTotal += line.Labor
		materialsTotal += line.Materials
	}

	laborTotal = common.Round2(laborTotal)
	materialsTotal = common.Round2(materialsTotal)
	subtotal := common.Round2(laborTotal + materialsTotal)

	vatAmount := e.deps.Tax.TotalVAT(prices, e.rules.WorkValue(subtotal), e.rules.PropertyAgeYears)
	margin := e.rules.Margins.For(req.BudgetConscious)
	finalPrice := common.Round2((subtotal + vatAmount) * (1 + margin))

	assessment := e.deps.Confidence.Score(req, prices, finalPrice)
	schedule := e.schedule(req)

	now := e.now()
	q := &model.Quote{
		ID:          newQuoteID(now),
		GeneratedAt: now,
		Metadata: model.Metadata{
			SchemaVersion:    SchemaVersion,
			Version:          e.version,
			GeneratedBy:      GeneratedBy,
			AlgorithmVersion: AlgorithmVersion,
		},
		Requirement:            req,
		TaskPrices:             prices,
		Schedule:               schedule,
		LaborTotal:             laborTotal,
		MaterialsTotal:         materialsTotal,
		Subtotal:               subtotal,
		VATAmount:              vatAmount,
		FinalPrice:             finalPrice,
		MarginPercentage:       common.Round2(margin * 100),
		LocationMultiplier:     multiplier,
		EstimatedDurationHours: schedule.TotalHours,
		ConfidenceScore:        assessment.Score,
		Confidence: model.ConfidenceDetail{
			Severity:    string(confidence.SeverityOf(assessment.Flags)),
			Flags:       assessment.Labels(),
			Categories:  assessment.Categories(),
			Suggestions: confidence.Suggestions(assessment.Flags),
		},
	}

	e.logger.Info("quote generated",
		"quote_id", q.ID,
		"tasks", len(prices),
		"final_price", q.FinalPrice,
		"confidence", q.ConfidenceScore)

	return q, nil
}

func (e *Engine) priceTask(task model.TaskType, req model.RequirementRecord, multiplier float64) (model.TaskPrice, error) {
	mat, err := e.deps.Materials.Cost(task, req.Size, req.Quality)
	if err != nil {
		return model.TaskPrice{}, fmt.Errorf("%w: materials for %s: %w", common.ErrCalculationFailed, task, err)
	}
	lab, err := e.deps.Labor.Cost(task, req.Size, model.ComplexityStandard)
	if err != nil {
		return model.TaskPrice{}, fmt.Errorf("%w: labor for %s: %w", common.ErrCalculationFailed, task, err)
	}
	if invalidAmount(mat) || invalidAmount(lab) {
		return model.TaskPrice{}, fmt.Errorf("%w: %s produced a non-finite or negative cost", common.ErrCalculationFailed, task)
	}

	materialsCost := common.Round2(mat * multiplier)
	laborCost := common.Round2(lab * multiplier)

	e.logger.Debug("task priced",
		"task", task,
		"materials", materialsCost,
		"labor", laborCost)

	return model.TaskPrice{
		Task:               task,
		Materials:          materialsCost,
		Labor:              laborCost,
		Total:              common.Round2(materialsCost + laborCost),
		LocationMultiplier: multiplier,
	}, nil
}

func (e *Engine) schedule(req model.RequirementRecord) model.Schedule {
	d, err := e.deps.Labor.EstimateProjectDuration(req.Tasks, req.Size)
	if err != nil {
		e.logger.Warn("could not estimate project duration", "error", err)
		return model.Schedule{}
	}
	return model.Schedule{
		TaskHours:   d.TaskBreakdown,
		TotalHours:  d.TotalHours,
		WorkingDays: d.WorkingDays,
		BufferDays:  d.BufferDays,
		TotalDays:   d.TotalDays,
	}
}

// VATBreakdown recomputes the VAT detail of a finished quote with the
// current tables.
func (e *Engine) VATBreakdown(q *model.Quote) vat.Breakdown {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.deps.Tax.Breakdown(q.TaskPrices, e.rules.WorkValue(q.Subtotal), e.rules.PropertyAgeYears)
}

// Recalibrate applies a bulk replace-by-key update to the pricing tables.
// Every table is validated before any is applied, so a rejected calibration
// leaves all tables as they were.
func (e *Engine) Recalibrate(cal model.Calibration) error {
	if cal.Empty() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	checks := []struct {
		check func(model.Calibration) error
		name  string
	}{
		{name: "labor", check: e.deps.Labor.ValidateCalibration},
		{name: "materials", check: e.deps.Materials.ValidateCalibration},
		{name: "vat", check: e.deps.Tax.ValidateCalibration},
		{name: "confidence", check: e.deps.Confidence.ValidateCalibration},
		{name: "locations", check: func(c model.Calibration) error {
			return validateMultipliers(c.LocationMultipliers)
		}},
	}
	for _, c := range checks {
		if err := c.check(cal); err != nil {
			return fmt.Errorf("calibration rejected by %s tables: %w", c.name, err)
		}
	}

	steps := []struct {
		apply func() error
		name  string
		size  int
	}{
		{name: "hourly_rates", size: len(cal.HourlyRates), apply: func() error {
			return e.deps.Labor.UpdateHourlyRates(cal.HourlyRates)
		}},
		{name: "material_base_costs", size: len(cal.MaterialBaseCosts), apply: func() error {
			return e.deps.Materials.UpdateBaseCosts(cal.MaterialBaseCosts)
		}},
		{name: "fixture_costs", size: len(cal.FixtureCosts), apply: func() error {
			return e.deps.Materials.UpdateFixtureCosts(cal.FixtureCosts)
		}},
		{name: "vat_rates", size: len(cal.VATRates), apply: func() error {
			return e.deps.Tax.UpdateRates(cal.VATRates)
		}},
		{name: "vat_classifications", size: len(cal.VATClasses), apply: func() error {
			return e.deps.Tax.UpdateClassifications(cal.VATClasses)
		}},
		{name: "historical_pricing", size: len(cal.HistoricalPricing), apply: func() error {
			return e.deps.Confidence.UpdateHistoricalPricing(cal.HistoricalPricing)
		}},
		{name: "location_confidence", size: len(cal.LocationConfidence), apply: func() error {
			return e.deps.Confidence.UpdateLocations(cal.LocationConfidence)
		}},
		{name: "location_multipliers", size: len(cal.LocationMultipliers), apply: func() error {
			e.updateLocations(cal.LocationMultipliers)
			return nil
		}},
	}

	for _, step := range steps {
		if step.size == 0 {
			continue
		}
		// Validated above; a failure here means a calculator disagrees
		// with its own validation.
		if err := step.apply(); err != nil {
			return fmt.Errorf("failed to recalibrate %s: %w", step.name, err)
		}
		e.logger.Info("recalibrated pricing table", "table", step.name, "entries", step.size)
	}
	return nil
}

func validateMultipliers(multipliers map[string]float64) error {
	for name, m := range multipliers {
		if m <= 0 || invalidAmount(m) {
			return fmt.Errorf("%w: location %q has invalid multiplier %v", common.ErrInvalidConfig, name, m)
		}
	}
	return nil
}

// updateLocations must be called with e.mu held. Locations new to the rules
// are taught to the extractor so descriptions naming them are recognised.
func (e *Engine) updateLocations(multipliers map[string]float64) {
	locations := maps.Clone(e.rules.Locations)
	if locations == nil {
		locations = make(map[string]float64, len(multipliers))
	}

	var added []string
	for name, m := range multipliers {
		loc := strings.ToLower(name)
		if _, ok := locations[loc]; !ok {
			added = append(added, loc)
		}
		locations[loc] = m
	}
	e.rules.Locations = locations

	if len(added) > 0 {
		e.deps.Extractor.AddLocations(added...)
	}
}

func fallbackLine(task model.TaskType, err error) model.TaskPrice {
	return model.TaskPrice{
		Task:               task,
		Materials:          FallbackMaterials,
		Labor:              FallbackLabor,
		Total:              FallbackMaterials + FallbackLabor,
		LocationMultiplier: 1.0,
		Error:              err.Error(),
	}
}

func invalidAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// newQuoteID builds DQ<timestamp>-<8 hex>. The suffix comes from the random
// tail of a UUIDv7 so quotes issued in the same second stay distinct.
func newQuoteID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "DQ" + now.Format("20060102150405") + "-" + hex[len(hex)-8:]
}
