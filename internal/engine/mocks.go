package engine

import (
	"sync"

	"github.com/Veraticus/renovation-quote/internal/confidence"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// MockMaterialPricer is a test implementation of MaterialPricer.
// Nil function fields fall back to fixed answers.
type MockMaterialPricer struct {
	CostFn               func(task model.TaskType, size float64, quality model.Quality) (float64, error)
	ValidateFn           func(cal model.Calibration) error
	UpdateBaseCostsFn    func(costs map[model.TaskType]float64) error
	UpdateFixtureCostsFn func(costs map[string]float64) error
	calls                []model.TaskType
	mu                   sync.Mutex
}

// Cost implements MaterialPricer.
func (m *MockMaterialPricer) Cost(task model.TaskType, size float64, quality model.Quality) (float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, task)
	m.mu.Unlock()

	if m.CostFn != nil {
		return m.CostFn(task, size, quality)
	}
	return 100, nil
}

// ValidateCalibration implements MaterialPricer.
func (m *MockMaterialPricer) ValidateCalibration(cal model.Calibration) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(cal)
	}
	return nil
}

// UpdateBaseCosts implements MaterialPricer.
func (m *MockMaterialPricer) UpdateBaseCosts(costs map[model.TaskType]float64) error {
	if m.UpdateBaseCostsFn != nil {
		return m.UpdateBaseCostsFn(costs)
	}
	return nil
}

// UpdateFixtureCosts implements MaterialPricer.
func (m *MockMaterialPricer) UpdateFixtureCosts(costs map[string]float64) error {
	if m.UpdateFixtureCostsFn != nil {
		return m.UpdateFixtureCostsFn(costs)
	}
	return nil
}

// Calls returns the tasks priced so far.
func (m *MockMaterialPricer) Calls() []model.TaskType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TaskType(nil), m.calls...)
}

// MockLaborPricer is a test implementation of LaborPricer.
type MockLaborPricer struct {
	CostFn              func(task model.TaskType, size float64, complexity model.Complexity) (float64, error)
	DurationFn          func(tasks []model.TaskType, size float64) (labor.ProjectDuration, error)
	ValidateFn          func(cal model.Calibration) error
	UpdateHourlyRatesFn func(rates map[model.TaskType]float64) error
}

// Cost implements LaborPricer.
func (m *MockLaborPricer) Cost(task model.TaskType, size float64, complexity model.Complexity) (float64, error) {
	if m.CostFn != nil {
		return m.CostFn(task, size, complexity)
	}
	return 200, nil
}

// EstimateProjectDuration implements LaborPricer.
func (m *MockLaborPricer) EstimateProjectDuration(tasks []model.TaskType, size float64) (labor.ProjectDuration, error) {
	if m.DurationFn != nil {
		return m.DurationFn(tasks, size)
	}
	return labor.ProjectDuration{TotalHours: 8, WorkingDays: 1, BufferDays: 1, TotalDays: 2}, nil
}

// ValidateCalibration implements LaborPricer.
func (m *MockLaborPricer) ValidateCalibration(cal model.Calibration) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(cal)
	}
	return nil
}

// UpdateHourlyRates implements LaborPricer.
func (m *MockLaborPricer) UpdateHourlyRates(rates map[model.TaskType]float64) error {
	if m.UpdateHourlyRatesFn != nil {
		return m.UpdateHourlyRatesFn(rates)
	}
	return nil
}

// MockTaxCalculator is a test implementation of TaxCalculator.
type MockTaxCalculator struct {
	TotalVATFn              func(prices []model.TaskPrice, workValue float64, propertyAge int) float64
	BreakdownFn             func(prices []model.TaskPrice, workValue float64, propertyAge int) vat.Breakdown
	ValidateFn              func(cal model.Calibration) error
	UpdateRatesFn           func(rates map[model.VATClass]float64) error
	UpdateClassificationsFn func(classes map[model.TaskType]model.VATClass) error
}

// TotalVAT implements TaxCalculator.
func (m *MockTaxCalculator) TotalVAT(prices []model.TaskPrice, workValue float64, propertyAge int) float64 {
	if m.TotalVATFn != nil {
		return m.TotalVATFn(prices, workValue, propertyAge)
	}
	return 0
}

// Breakdown implements TaxCalculator.
func (m *MockTaxCalculator) Breakdown(prices []model.TaskPrice, workValue float64, propertyAge int) vat.Breakdown {
	if m.BreakdownFn != nil {
		return m.BreakdownFn(prices, workValue, propertyAge)
	}
	return vat.Breakdown{}
}

// ValidateCalibration implements TaxCalculator.
func (m *MockTaxCalculator) ValidateCalibration(cal model.Calibration) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(cal)
	}
	return nil
}

// UpdateRates implements TaxCalculator.
func (m *MockTaxCalculator) UpdateRates(rates map[model.VATClass]float64) error {
	if m.UpdateRatesFn != nil {
		return m.UpdateRatesFn(rates)
	}
	return nil
}

// UpdateClassifications implements TaxCalculator.
func (m *MockTaxCalculator) UpdateClassifications(classes map[model.TaskType]model.VATClass) error {
	if m.UpdateClassificationsFn != nil {
		return m.UpdateClassificationsFn(classes)
	}
	return nil
}

// MockConfidenceAssessor is a test implementation of ConfidenceAssessor.
type MockConfidenceAssessor struct {
	ScoreFn                   func(req model.RequirementRecord, prices []model.TaskPrice, finalPrice float64) confidence.Assessment
	ValidateFn                func(cal model.Calibration) error
	UpdateHistoricalPricingFn func(ranges map[model.TaskType]model.HistoricalRange) error
	UpdateLocationsFn         func(scores map[string]float64) error
}

// Score implements ConfidenceAssessor.
func (m *MockConfidenceAssessor) Score(req model.RequirementRecord, prices []model.TaskPrice, finalPrice float64) confidence.Assessment {
	if m.ScoreFn != nil {
		return m.ScoreFn(req, prices, finalPrice)
	}
	return confidence.Assessment{Score: 75}
}

// ValidateCalibration implements ConfidenceAssessor.
func (m *MockConfidenceAssessor) ValidateCalibration(cal model.Calibration) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(cal)
	}
	return nil
}

// UpdateLocations implements ConfidenceAssessor.
func (m *MockConfidenceAssessor) UpdateLocations(scores map[string]float64) error {
	if m.UpdateLocationsFn != nil {
		return m.UpdateLocationsFn(scores)
	}
	return nil
}

// UpdateHistoricalPricing implements ConfidenceAssessor.
func (m *MockConfidenceAssessor) UpdateHistoricalPricing(ranges map[model.TaskType]model.HistoricalRange) error {
	if m.UpdateHistoricalPricingFn != nil {
		return m.UpdateHistoricalPricingFn(ranges)
	}
	return nil
}

// StaticExtractor returns a fixed requirement for any text.
type StaticExtractor struct {
	Err         error
	Requirement model.RequirementRecord
}

// Extract implements RequirementExtractor.
func (s StaticExtractor) Extract(text string) (model.RequirementRecord, error) {
	if s.Err != nil {
		return model.RequirementRecord{}, s.Err
	}
	req := s.Requirement
	req.OriginalText = text
	return req, nil
}

// AddLocations implements RequirementExtractor. The requirement is fixed, so
// new locations are ignored.
func (s StaticExtractor) AddLocations(...string) {}
