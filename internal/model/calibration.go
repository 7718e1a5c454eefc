package model

// HistoricalRange is the observed price-per-area band for one task.
type HistoricalRange struct {
	Min float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max float64 `json:"max" yaml:"max" mapstructure:"max"`
	Avg float64 `json:"avg" yaml:"avg" mapstructure:"avg"`
}

// Calibration is a bulk replace-by-key update of the pricing tables.
// Nil maps leave the corresponding table untouched.
type Calibration struct {
	HourlyRates         map[TaskType]float64
	MaterialBaseCosts   map[TaskType]float64
	FixtureCosts        map[string]float64
	VATRates            map[VATClass]float64
	VATClasses          map[TaskType]VATClass
	HistoricalPricing   map[TaskType]HistoricalRange
	LocationMultipliers map[string]float64
	LocationConfidence  map[string]float64
}

// Empty reports whether the calibration carries no updates.
func (c Calibration) Empty() bool {
	return len(c.HourlyRates) == 0 &&
		len(c.MaterialBaseCosts) == 0 &&
		len(c.FixtureCosts) == 0 &&
		len(c.VATRates) == 0 &&
		len(c.VATClasses) == 0 &&
		len(c.HistoricalPricing) == 0 &&
		len(c.LocationMultipliers) == 0 &&
		len(c.LocationConfidence) == 0
}
