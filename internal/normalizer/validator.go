package normalizer

import (
	"errors"
	"fmt"
	"strconv"

	"ridership/internal/config"
	"ridership/internal/models"
)

// Tree record field names as they appear after namespace stripping.
const (
	FieldDate    = "date"
	FieldRoute   = "route"
	FieldRides   = "rides"
	FieldDayType = "daytype"
)

// Route CSV column names.
const (
	ColumnYear      = "Calendar_Year"
	ColumnMonth     = "Calendar_Month"
	ColumnRoute     = "Route"
	ColumnRidership = "Average_Daily_Ridership"
)

// RequiredRouteColumns must all be present in the route CSV header.
var RequiredRouteColumns = []string{ColumnYear, ColumnMonth, ColumnRoute, ColumnRidership}

// Validation errors. The date errors mark records that are dropped silently.
var (
	ErrMissingDate     = errors.New("record has no date")
	ErrUnparseableYear = errors.New("date does not start with a year")
	ErrYearOutOfRange  = errors.New("year outside configured range")
	ErrMissingColumn   = errors.New("missing required column")
)

// Validator handles presence and range checks on raw records.
type Validator struct {
	years config.YearRange
}

// NewValidator creates a validator for the given inclusive year range.
func NewValidator(years config.YearRange) *Validator {
	return &Validator{years: years}
}

// CheckTreeDate returns the year of a tree record's date, or an error when
// the record must be dropped: no date, an empty date, a date whose first
// four characters are not an integer, or a year out of range.
func (v *Validator) CheckTreeDate(rec *models.TreeRecord) (int, error) {
	date, ok := rec.Text(FieldDate)
	if !ok || date == "" {
		return 0, ErrMissingDate
	}

	if len(date) < 4 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableYear, date)
	}

	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableYear, date)
	}

	if !v.years.Contains(year) {
		return year, fmt.Errorf("%w: %d not in %s", ErrYearOutOfRange, year, v.years)
	}

	return year, nil
}

// ValidateRouteHeader checks that every required column is in the header.
func (v *Validator) ValidateRouteHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	for _, col := range RequiredRouteColumns {
		if !present[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	return nil
}

// InRange reports whether year lies within the configured range.
func (v *Validator) InRange(year int) bool {
	return v.years.Contains(year)
}
