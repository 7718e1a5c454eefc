// Package storage reads and writes quote documents on disk.
package storage

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/renovation-quote/internal/model"
)

// Validation errors.
var (
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidQuote = errors.New("invalid quote")
)

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateQuote checks that a quote is complete enough to be stored.
func validateQuote(q *model.Quote) error {
	if q == nil {
		return fmt.Errorf("%w: quote", ErrNilParameter)
	}
	if q.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidQuote)
	}
	if q.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generation time", ErrInvalidQuote)
	}

	totals := map[string]float64{
		"labor_total":      q.LaborTotal,
		"materials_total":  q.MaterialsTotal,
		"vat_amount":       q.VATAmount,
		"subtotal":         q.Subtotal,
		"final_price":      q.FinalPrice,
		"confidence_score": q.ConfidenceScore,
	}
	for name, v := range totals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidQuote, name)
		}
	}

	for i, line := range q.TaskPrices {
		if line.Task == "" {
			return fmt.Errorf("%w: task price at index %d has no task", ErrInvalidQuote, i)
		}
	}
	return nil
}
