package engine

import (
	"github.com/Veraticus/renovation-quote/internal/confidence"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/model"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// RequirementExtractor turns free text into a requirement record.
type RequirementExtractor interface {
	Extract(text string) (model.RequirementRecord, error)
	AddLocations(names ...string)
}

// MaterialPricer defines the contract for material cost estimation.
type MaterialPricer interface {
	Cost(task model.TaskType, size float64, quality model.Quality) (float64, error)
	ValidateCalibration(cal model.Calibration) error
	UpdateBaseCosts(costs map[model.TaskType]float64) error
	UpdateFixtureCosts(costs map[string]float64) error
}

// LaborPricer defines the contract for labor cost and duration estimation.
type LaborPricer interface {
	Cost(task model.TaskType, size float64, complexity model.Complexity) (float64, error)
	EstimateProjectDuration(tasks []model.TaskType, size float64) (labor.ProjectDuration, error)
	ValidateCalibration(cal model.Calibration) error
	UpdateHourlyRates(rates map[model.TaskType]float64) error
}

// TaxCalculator defines the contract for VAT computation.
type TaxCalculator interface {
	TotalVAT(prices []model.TaskPrice, workValue float64, propertyAge int) float64
	Breakdown(prices []model.TaskPrice, workValue float64, propertyAge int) vat.Breakdown
	ValidateCalibration(cal model.Calibration) error
	UpdateRates(rates map[model.VATClass]float64) error
	UpdateClassifications(classes map[model.TaskType]model.VATClass) error
}

// ConfidenceAssessor defines the contract for confidence scoring.
type ConfidenceAssessor interface {
	Score(req model.RequirementRecord, prices []model.TaskPrice, finalPrice float64) confidence.Assessment
	ValidateCalibration(cal model.Calibration) error
	UpdateHistoricalPricing(ranges map[model.TaskType]model.HistoricalRange) error
	UpdateLocations(scores map[string]float64) error
}
