package model

import "time"

// RequirementRecord is the structured reading of a renovation description.
type RequirementRecord struct {
	Location        string     `json:"location" yaml:"location"`
	Quality         Quality    `json:"quality" yaml:"quality"`
	OriginalText    string     `json:"original_text" yaml:"original_text"`
	Tasks           []TaskType `json:"tasks" yaml:"tasks"`
	Size            float64    `json:"size" yaml:"size"`
	BudgetConscious bool       `json:"budget_conscious" yaml:"budget_conscious"`
}

// HasTask reports whether the requirement includes the given task.
func (r RequirementRecord) HasTask(task TaskType) bool {
	for _, t := range r.Tasks {
		if t == task {
			return true
		}
	}
	return false
}

// TaskPrice is one priced line of a quote.
type TaskPrice struct {
	Task               TaskType `json:"task" yaml:"task"`
	Error              string   `json:"error,omitempty" yaml:"error,omitempty"`
	Materials          float64  `json:"materials" yaml:"materials"`
	Labor              float64  `json:"labor" yaml:"labor"`
	Total              float64  `json:"total" yaml:"total"`
	LocationMultiplier float64  `json:"location_multiplier" yaml:"location_multiplier"`
}

// Fallback reports whether the line carries fallback values.
func (p TaskPrice) Fallback() bool {
	return p.Error != ""
}

// Schedule is the calendar estimate for a project.
type Schedule struct {
	TaskHours   map[TaskType]float64 `json:"task_hours" yaml:"task_hours"`
	TotalHours  float64              `json:"total_hours" yaml:"total_hours"`
	WorkingDays int                  `json:"working_days" yaml:"working_days"`
	BufferDays  float64              `json:"buffer_days" yaml:"buffer_days"`
	TotalDays   float64              `json:"total_days" yaml:"total_days"`
}

// ConfidenceDetail carries the diagnostics behind a confidence score.
// Categories groups the flags by what they concern.
type ConfidenceDetail struct {
	Categories  map[string][]string `json:"categories" yaml:"categories"`
	Severity    string              `json:"severity" yaml:"severity"`
	Flags       []string            `json:"flags" yaml:"flags"`
	Suggestions []string            `json:"suggestions" yaml:"suggestions"`
}

// Metadata tags a quote with the schema and engine that produced it.
type Metadata struct {
	SchemaVersion    string `json:"schema_version" yaml:"schema_version"`
	Version          string `json:"version" yaml:"version"`
	GeneratedBy      string `json:"generated_by" yaml:"generated_by"`
	AlgorithmVersion string `json:"algorithm_version" yaml:"algorithm_version"`
}

// Quote is the complete, immutable result of one pricing run.
type Quote struct {
	GeneratedAt            time.Time         `json:"generated_at" yaml:"generated_at"`
	Metadata               Metadata          `json:"metadata" yaml:"metadata"`
	ID                     string            `json:"quote_id" yaml:"quote_id"`
	Confidence             ConfidenceDetail  `json:"confidence" yaml:"confidence"`
	Requirement            RequirementRecord `json:"requirement" yaml:"requirement"`
	TaskPrices             []TaskPrice       `json:"task_prices" yaml:"task_prices"`
	Schedule               Schedule          `json:"schedule" yaml:"schedule"`
	LaborTotal             float64           `json:"labor_total" yaml:"labor_total"`
	MaterialsTotal         float64           `json:"materials_total" yaml:"materials_total"`
	VATAmount              float64           `json:"vat_amount" yaml:"vat_amount"`
	Subtotal               float64           `json:"subtotal" yaml:"subtotal"`
	FinalPrice             float64           `json:"final_price" yaml:"final_price"`
	ConfidenceScore        float64           `json:"confidence_score" yaml:"confidence_score"`
	MarginPercentage       float64           `json:"margin_percentage" yaml:"margin_percentage"`
	LocationMultiplier     float64           `json:"location_multiplier" yaml:"location_multiplier"`
	EstimatedDurationHours float64           `json:"estimated_duration_hours" yaml:"estimated_duration_hours"`
}
