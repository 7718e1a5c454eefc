// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// TaskType identifies one renovation activity.
type TaskType string

// Task type constants. Declaration order is the canonical order.
const (
	TaskTiles      TaskType = "tiles"
	TaskPlumbing   TaskType = "plumbing"
	TaskPainting   TaskType = "painting"
	TaskFlooring   TaskType = "flooring"
	TaskVanity     TaskType = "vanity"
	TaskElectrical TaskType = "electrical"
)

var canonicalTasks = []TaskType{
	TaskTiles,
	TaskPlumbing,
	TaskPainting,
	TaskFlooring,
	TaskVanity,
	TaskElectrical,
}

// AllTasks returns every task type in canonical order.
func AllTasks() []TaskType {
	out := make([]TaskType, len(canonicalTasks))
	copy(out, canonicalTasks)
	return out
}

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	return t.Index() >= 0
}

// Index returns the canonical position of t, or -1 for unknown tasks.
func (t TaskType) Index() int {
	for i, task := range canonicalTasks {
		if task == t {
			return i
		}
	}
	return -1
}

// ParseTaskType converts a string into a TaskType.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown task type %q", s)
	}
	return t, nil
}

// SortTasks returns the distinct known tasks of the input in canonical order.
// Unknown task types are appended after the known ones in input order.
func SortTasks(tasks []TaskType) []TaskType {
	seen := make(map[TaskType]bool, len(tasks))
	for _, t := range tasks {
		seen[t] = true
	}

	out := make([]TaskType, 0, len(seen))
	for _, t := range canonicalTasks {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	for _, t := range tasks {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	return out
}

// Quality is the material grade bucket.
type Quality string

// Quality tiers, cheapest first.
const (
	QualityBasic    Quality = "basic"
	QualityStandard Quality = "standard"
	QualityPremium  Quality = "premium"
	QualityLuxury   Quality = "luxury"
)

// Complexity is the labor difficulty bucket.
type Complexity string

// Complexity tiers.
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityStandard Complexity = "standard"
	ComplexityComplex  Complexity = "complex"
)

// VATClass is a tax-rate bucket.
type VATClass string

// VAT classes.
const (
	VATStandard     VATClass = "standard"
	VATReduced      VATClass = "reduced"
	VATSuperReduced VATClass = "super_reduced"
)

// Valid reports whether c is a known VAT class.
func (c VATClass) Valid() bool {
	switch c {
	case VATStandard, VATReduced, VATSuperReduced:
		return true
	}
	return false
}

// ParseVATClass converts a string into a VATClass.
func ParseVATClass(s string) (VATClass, error) {
	c := VATClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown VAT class %q", s)
	}
	return c, nil
}
