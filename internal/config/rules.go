package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/common"
)

// Margins are the profit margins applied on top of subtotal plus VAT.
type Margins struct {
	Standard float64 `mapstructure:"standard"`
	Budget   float64 `mapstructure:"budget"`
}

// For returns the margin that applies to a requirement.
func (m Margins) For(budgetConscious bool) float64 {
	if budgetConscious {
		return m.Budget
	}
	return m.Standard
}

// Work value sources for VAT eligibility.
const (
	// WorkValueNone passes no work value, so only classes that are not
	// eligibility-gated get a reduced rate.
	WorkValueNone = "none"
	// WorkValueSubtotal uses the quote's pre-tax subtotal. The reduced-rate
	// threshold then makes the final price non-monotonic in cost.
	WorkValueSubtotal = "subtotal"
)

// Rules are the business rules the quote engine runs with.
type Rules struct {
	Locations        map[string]float64 `mapstructure:"locations"`
	OutputDir        string             `mapstructure:"output_dir"`
	BaseLocation     string             `mapstructure:"base_location"`
	Margins          Margins            `mapstructure:"margins"`
	DefaultSize      float64            `mapstructure:"default_size"`
	MinSize          float64            `mapstructure:"min_size"`
	MaxSize          float64            `mapstructure:"max_size"`
	VATWorkValue     string             `mapstructure:"vat_work_value"`
	PropertyAgeYears int                `mapstructure:"property_age_years"`
}

// DefaultRules returns the reference pricing rules.
func DefaultRules() Rules {
	return Rules{
		Locations: map[string]float64{
			"marseille":   1.0,
			"paris":       1.3,
			"nice":        1.25,
			"lyon":        1.15,
			"toulouse":    1.1,
			"nantes":      1.05,
			"strasbourg":  1.1,
			"montpellier": 1.05,
		},
		BaseLocation:     "marseille",
		Margins:          Margins{Standard: 0.25, Budget: 0.15},
		DefaultSize:      4.0,
		MinSize:          1,
		MaxSize:          50,
		PropertyAgeYears: 10,
		VATWorkValue:     WorkValueNone,
		OutputDir:        "./output/quotes",
	}
}

// Multiplier returns the price multiplier of a location, falling back to
// the base location for unknown names.
func (r Rules) Multiplier(location string) float64 {
	if m, ok := r.Locations[location]; ok {
		return m
	}
	if m, ok := r.Locations[r.BaseLocation]; ok {
		return m
	}
	return 1.0
}

// WorkValue returns the work value handed to VAT eligibility for a quote
// with the given subtotal.
func (r Rules) WorkValue(subtotal float64) float64 {
	if r.VATWorkValue == WorkValueSubtotal {
		return subtotal
	}
	return 0
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	if len(r.Locations) == 0 {
		return fmt.Errorf("%w: at least one location is required", common.ErrInvalidConfig)
	}
	for name, m := range r.Locations {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: location %q has invalid multiplier %v", common.ErrInvalidConfig, name, m)
		}
	}
	if _, ok := r.Locations[r.BaseLocation]; !ok {
		return fmt.Errorf("%w: base location %q is not a known location", common.ErrInvalidConfig, r.BaseLocation)
	}
	for name, m := range map[string]float64{"standard": r.Margins.Standard, "budget": r.Margins.Budget} {
		if m < 0 || m >= 1 {
			return fmt.Errorf("%w: %s margin must be in [0, 1), got %v", common.ErrInvalidConfig, name, m)
		}
	}
	if r.MinSize <= 0 || r.MaxSize < r.MinSize {
		return fmt.Errorf("%w: size range [%v, %v] is invalid", common.ErrInvalidConfig, r.MinSize, r.MaxSize)
	}
	if r.DefaultSize <= 0 {
		return fmt.Errorf("%w: default size must be positive", common.ErrInvalidConfig)
	}
	if r.PropertyAgeYears < 0 {
		return fmt.Errorf("%w: property age cannot be negative", common.ErrInvalidConfig)
	}
	if r.VATWorkValue != WorkValueNone && r.VATWorkValue != WorkValueSubtotal {
		return fmt.Errorf("%w: vat_work_value must be %q or %q, got %q",
			common.ErrInvalidConfig, WorkValueNone, WorkValueSubtotal, r.VATWorkValue)
	}
	return nil
}

// SetDefaults registers the default rules on v under the "pricing" key.
func SetDefaults(v *viper.Viper) {
	d := DefaultRules()
	v.SetDefault("pricing.locations", d.Locations)
	v.SetDefault("pricing.base_location", d.BaseLocation)
	v.SetDefault("pricing.margins.standard", d.Margins.Standard)
	v.SetDefault("pricing.margins.budget", d.Margins.Budget)
	v.SetDefault("pricing.default_size", d.DefaultSize)
	v.SetDefault("pricing.min_size", d.MinSize)
	v.SetDefault("pricing.max_size", d.MaxSize)
	v.SetDefault("pricing.property_age_years", d.PropertyAgeYears)
	v.SetDefault("pricing.vat_work_value", d.VATWorkValue)
	v.SetDefault("pricing.output_dir", d.OutputDir)
}

// LoadRules reads the "pricing" section of v over the defaults.
func LoadRules(v *viper.Viper) (Rules, error) {
	SetDefaults(v)

	rules := DefaultRules()
	if err := v.UnmarshalKey("pricing", &rules); err != nil {
		return Rules{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	rules.OutputDir = ExpandPath(rules.OutputDir)

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}
