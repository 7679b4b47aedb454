// Package validator checks the unified ridership table before it is written.
package validator

import (
	"errors"
	"fmt"
	"slices"

	"ridership/internal/config"
	"ridership/internal/models"
)

// Validation errors.
var (
	ErrTableInvalid    = errors.New("unified table failed validation")
	ErrYearOutOfRange  = errors.New("date outside configured year range")
	ErrUnknownCity     = errors.New("unknown city")
	ErrCityOrder       = errors.New("rows out of source order")
	ErrNotFirstOfMonth = errors.New("monthly row not dated on the 1st")
	ErrExtraFields     = errors.New("monthly row carries extra fields")
	ErrNegativeCount   = errors.New("negative ridership count")
	ErrMissingColumn   = errors.New("missing core column")
)

// maxReportedErrors caps how many row errors are kept in a result.
const maxReportedErrors = 20

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err   error
	Value string
	Row   int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Value)
	}

	return fmt.Sprintf("row %d: %v: %s", e.Row, e.Err, e.Value)
}

// Unwrap returns the sentinel error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationStats counts rows per source.
type ValidationStats struct {
	TotalRows        int
	ChicagoRows      int
	PhiladelphiaRows int
	InvalidRows      int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors  []ValidationError
	Stats   ValidationStats
	IsValid bool
}

// Err returns nil for a valid table, otherwise an error wrapping
// ErrTableInvalid and the first row error.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	return fmt.Errorf("%w (%d invalid rows): %w", ErrTableInvalid, r.Stats.InvalidRows, r.Errors[0])
}

// TableValidator validates a unified table against the configured range.
type TableValidator struct {
	years config.YearRange
}

// NewTableValidator creates a new validator.
func NewTableValidator(years config.YearRange) *TableValidator {
	return &TableValidator{years: years}
}

// Validate checks the invariants of a unified table: every date is in range,
// every city is known, Chicago rows precede Philadelphia rows, Philadelphia
// rows are monthly with only the core columns, and counts are non-negative.
// Empty routes and counts are allowed.
func (v *TableValidator) Validate(table *models.Table) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	for _, col := range models.CoreColumns {
		if !slices.Contains(table.Columns, col) {
			result.add(ValidationError{Row: -1, Err: ErrMissingColumn, Value: col})
		}
	}

	seenPhiladelphia := false

	for i := range table.Rows {
		row := &table.Rows[i]
		result.Stats.TotalRows++

		errs := v.validateRow(row)

		switch row.City {
		case models.CityChicago:
			result.Stats.ChicagoRows++

			if seenPhiladelphia {
				errs = append(errs, ErrCityOrder)
			}
		case models.CityPhiladelphia:
			result.Stats.PhiladelphiaRows++
			seenPhiladelphia = true
		}

		if len(errs) == 0 {
			continue
		}

		result.Stats.InvalidRows++

		for _, err := range errs {
			result.add(ValidationError{Row: i, Err: err, Value: row.Date.String() + " " + string(row.City) + " " + row.Route})
		}
	}

	return result
}

func (v *TableValidator) validateRow(row *models.Row) []error {
	var errs []error

	if !v.years.Contains(row.Date.Year) {
		errs = append(errs, ErrYearOutOfRange)
	}

	if !row.City.IsKnown() {
		errs = append(errs, ErrUnknownCity)
	}

	if row.RidershipCount != nil && *row.RidershipCount < 0 {
		errs = append(errs, ErrNegativeCount)
	}

	if row.City == models.CityPhiladelphia {
		if row.Date.Day != 1 {
			errs = append(errs, ErrNotFirstOfMonth)
		}

		if row.HasDayType || row.DayType != nil || len(row.Extra) > 0 {
			errs = append(errs, ErrExtraFields)
		}
	}

	return errs
}

func (r *ValidationResult) add(e ValidationError) {
	r.IsValid = false

	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, e)
	}
}
