// Package vat applies French renovation VAT rules to priced tasks.
package vat

import (
	"fmt"
	"math"
	"sync"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// ValidationTolerance is the accepted rounding drift between two VAT totals.
const ValidationTolerance = 0.01

// Eligibility gates the reduced rate.
type Eligibility struct {
	MinWorkValue   float64
	MaxWorkValue   float64
	MinPropertyAge int
}

// Config holds the VAT tables.
type Config struct {
	Rates           map[model.VATClass]float64
	Classifications map[model.TaskType]model.VATClass
	Reduced         Eligibility
}

// DefaultConfig returns the French rates as of 2024.
func DefaultConfig() Config {
	return Config{
		Rates: map[model.VATClass]float64{
			model.VATStandard:     0.20,
			model.VATReduced:      0.10,
			model.VATSuperReduced: 0.055,
		},
		Classifications: map[model.TaskType]model.VATClass{
			model.TaskTiles:      model.VATReduced,
			model.TaskPlumbing:   model.VATReduced,
			model.TaskPainting:   model.VATReduced,
			model.TaskFlooring:   model.VATReduced,
			model.TaskVanity:     model.VATStandard,
			model.TaskElectrical: model.VATReduced,
		},
		Reduced: Eligibility{
			MinWorkValue:   1000.0,
			MaxWorkValue:   50000.0,
			MinPropertyAge: 2,
		},
	}
}

// Rules computes VAT for priced tasks.
type Rules struct {
	config Config
	mu     sync.RWMutex
}

// New creates rules with the default configuration.
func New() *Rules {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates rules with a custom configuration.
func NewWithConfig(config Config) *Rules {
	return &Rules{config: config}
}

// TaskVAT is the tax due on one amount.
type TaskVAT struct {
	Class   model.VATClass `json:"class"`
	Applied model.VATClass `json:"applied"`
	Rate    float64        `json:"rate"`
	Amount  float64        `json:"amount"`
}

// Rate returns the VAT rate for a task. Reduced-class tasks fall back to the
// standard rate unless the work value and property age are eligible.
func (r *Rules) Rate(task model.TaskType, workValue float64, propertyAge int) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, rate := r.applied(task, workValue, propertyAge)
	return rate
}

func (r *Rules) classOf(task model.TaskType) model.VATClass {
	if class, ok := r.config.Classifications[task]; ok {
		return class
	}
	return model.VATStandard
}

func (r *Rules) applied(task model.TaskType, workValue float64, propertyAge int) (model.VATClass, float64) {
	class := r.classOf(task)
	if class == model.VATReduced && !r.eligible(workValue, propertyAge) {
		class = model.VATStandard
	}
	return class, r.config.Rates[class]
}

func (r *Rules) eligible(workValue float64, propertyAge int) bool {
	e := r.config.Reduced
	if workValue < e.MinWorkValue || workValue > e.MaxWorkValue {
		return false
	}
	return propertyAge >= e.MinPropertyAge
}

// CalculateTaskVAT returns the VAT due on amount for a task.
func (r *Rules) CalculateTaskVAT(task model.TaskType, amount, workValue float64, propertyAge int) TaskVAT {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.taskVAT(task, amount, workValue, propertyAge)
}

func (r *Rules) taskVAT(task model.TaskType, amount, workValue float64, propertyAge int) TaskVAT {
	applied, rate := r.applied(task, workValue, propertyAge)
	return TaskVAT{
		Class:   r.classOf(task),
		Applied: applied,
		Rate:    rate,
		Amount:  common.Round2(amount * rate),
	}
}

// TotalVAT sums materials VAT and labor VAT of every line, each rounded separately.
func (r *Rules) TotalVAT(prices []model.TaskPrice, workValue float64, propertyAge int) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, p := range prices {
		total += r.taskVAT(p.Task, p.Materials, workValue, propertyAge).Amount
		total += r.taskVAT(p.Task, p.Labor, workValue, propertyAge).Amount
	}
	return common.Round2(total)
}

// TaskLine is the VAT detail for one priced task.
type TaskLine struct {
	Task      model.TaskType `json:"task"`
	Materials TaskVAT        `json:"materials_vat"`
	Labor     TaskVAT        `json:"labor_vat"`
	Total     float64        `json:"total"`
}

// Breakdown groups VAT by task and by applied class.
type Breakdown struct {
	ByClass map[model.VATClass]float64 `json:"by_class"`
	ByTask  []TaskLine                 `json:"by_task"`
	Total   float64                    `json:"total"`
}

// Breakdown details the VAT of every line.
func (r *Rules) Breakdown(prices []model.TaskPrice, workValue float64, propertyAge int) Breakdown {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b := Breakdown{
		ByClass: map[model.VATClass]float64{
			model.VATStandard:     0,
			model.VATReduced:      0,
			model.VATSuperReduced: 0,
		},
		ByTask: make([]TaskLine, 0, len(prices)),
	}

	for _, p := range prices {
		materials := r.taskVAT(p.Task, p.Materials, workValue, propertyAge)
		labor := r.taskVAT(p.Task, p.Labor, workValue, propertyAge)
		lineTotal := common.Round2(materials.Amount + labor.Amount)

		b.ByTask = append(b.ByTask, TaskLine{
			Task:      p.Task,
			Materials: materials,
			Labor:     labor,
			Total:     lineTotal,
		})
		b.ByClass[materials.Applied] += lineTotal
		b.Total += lineTotal
	}

	b.Total = common.Round2(b.Total)
	for class, amount := range b.ByClass {
		b.ByClass[class] = common.Round2(amount)
	}
	return b
}

// Validation compares a provided VAT total against a recomputation.
type Validation struct {
	Calculated float64
	Provided   float64
	Difference float64
	Tolerance  float64
	Valid      bool
}

// Validate recomputes the VAT of prices and checks it against total.
func (r *Rules) Validate(prices []model.TaskPrice, total, workValue float64, propertyAge int) Validation {
	calculated := r.TotalVAT(prices, workValue, propertyAge)
	diff := math.Abs(calculated - total)
	return Validation{
		Calculated: calculated,
		Provided:   total,
		Difference: common.Round2(diff),
		Tolerance:  ValidationTolerance,
		Valid:      diff < ValidationTolerance,
	}
}

// Summary returns a copy of the current configuration.
func (r *Rules) Summary() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := Config{
		Rates:           make(map[model.VATClass]float64, len(r.config.Rates)),
		Classifications: make(map[model.TaskType]model.VATClass, len(r.config.Classifications)),
		Reduced:         r.config.Reduced,
	}
	for k, v := range r.config.Rates {
		out.Rates[k] = v
	}
	for k, v := range r.config.Classifications {
		out.Classifications[k] = v
	}
	return out
}

// ValidateCalibration checks the VAT tables of cal without applying them.
func (r *Rules) ValidateCalibration(cal model.Calibration) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.validateRates(cal.VATRates); err != nil {
		return err
	}
	return r.validateClassifications(cal.VATClasses)
}

// validateRates must be called with r.mu held.
func (r *Rules) validateRates(rates map[model.VATClass]float64) error {
	for class, rate := range rates {
		if _, ok := r.config.Rates[class]; !ok {
			return fmt.Errorf("%w: unknown VAT class %q", common.ErrInvalidConfig, class)
		}
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("%w: VAT rate %v out of range", common.ErrInvalidConfig, rate)
		}
	}
	return nil
}

// validateClassifications must be called with r.mu held.
func (r *Rules) validateClassifications(classes map[model.TaskType]model.VATClass) error {
	for task, class := range classes {
		if _, ok := r.config.Rates[class]; !ok {
			return fmt.Errorf("%w: unknown VAT class %q for %s", common.ErrInvalidConfig, class, task)
		}
	}
	return nil
}

// UpdateRates replaces the rate of known VAT classes.
func (r *Rules) UpdateRates(rates map[model.VATClass]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateRates(rates); err != nil {
		return err
	}
	for class, rate := range rates {
		r.config.Rates[class] = rate
	}
	return nil
}

// UpdateClassifications moves tasks into other known VAT classes.
func (r *Rules) UpdateClassifications(classes map[model.TaskType]model.VATClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateClassifications(classes); err != nil {
		return err
	}
	for task, class := range classes {
		r.config.Classifications[task] = class
	}
	return nil
}
