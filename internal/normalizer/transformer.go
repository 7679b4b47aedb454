package normalizer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ridership/internal/models"
	"ridership/pkg/utils"
)

// Transformation errors.
var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidCount = errors.New("invalid ridership count")
	ErrInvalidYear  = errors.New("invalid year")
	ErrInvalidMonth = errors.New("invalid month")
)

// reservedNames are output column names a tree field may not shadow.
var reservedNames = map[string]bool{
	FieldDate:                   true,
	FieldRoute:                  true,
	FieldRides:                  true,
	FieldDayType:                true,
	models.ColumnCity:           true,
	models.ColumnRidershipCount: true,
	models.ColumnDayType:        true,
}

// Transformer maps raw source records onto models.Row.
type Transformer struct {
	strings *utils.StringHelper
}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{strings: utils.NewStringHelper()}
}

// TreeRow converts an in-range tree record into a Chicago row. rides becomes
// ridership_count, daytype becomes day_type, and fields that are not part of
// the common schema are carried over as extras in record order. Only a date
// that is not a calendar date is an error; a missing route or an absent or
// unreadable rides value leaves the cell empty.
func (t *Transformer) TreeRow(rec *models.TreeRecord) (models.Row, error) {
	raw, _ := rec.Text(FieldDate)

	date, err := ParseTimestampDate(raw)
	if err != nil {
		return models.Row{}, err
	}

	route, _ := rec.Text(FieldRoute)
	rides, _ := rec.Text(FieldRides)

	row := models.Row{
		Date:           date,
		City:           models.CityChicago,
		Route:          t.strings.TrimWhitespace(route),
		RidershipCount: t.OptionalCount(rides),
	}

	if dayType, ok := rec.Get(FieldDayType); ok {
		row.DayType = dayType
		row.HasDayType = true
	}

	for _, f := range rec.Fields {
		if reservedNames[f.Name] {
			continue
		}

		row.Extra = append(row.Extra, f)
	}

	return row, nil
}

// RouteRow converts a route CSV record into a Philadelphia row dated the
// first day of its month. A blank or unreadable ridership cell is kept as
// an empty value.
func (t *Transformer) RouteRow(year int, rec *models.RouteRecord) (models.Row, error) {
	rawMonth := rec.Values[ColumnMonth]

	month, err := ParseWholeNumber(rawMonth)
	if err != nil {
		return models.Row{}, fmt.Errorf("%w %q", ErrInvalidMonth, t.strings.TruncateString(rawMonth, 20))
	}

	date, err := models.NewDate(year, time.Month(month), 1)
	if err != nil {
		return models.Row{}, fmt.Errorf("%w: %w", ErrInvalidMonth, err)
	}

	return models.Row{
		Date:           date,
		City:           models.CityPhiladelphia,
		Route:          t.strings.TrimWhitespace(rec.Values[ColumnRoute]),
		RidershipCount: t.OptionalCount(rec.Values[ColumnRidership]),
	}, nil
}

// ParseYear parses the year column of a route CSV record.
func (t *Transformer) ParseYear(rec *models.RouteRecord) (int, error) {
	raw := rec.Values[ColumnYear]

	year, err := ParseWholeNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidYear, t.strings.TruncateString(raw, 20))
	}

	return year, nil
}

// ParseCount parses a non-negative, finite ridership figure.
func (t *Transformer) ParseCount(s string) (float64, error) {
	trimmed := t.strings.TrimWhitespace(s)

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidCount, t.strings.TruncateString(s, 20))
	}

	return v, nil
}

// OptionalCount parses s with ParseCount and returns nil when s is blank or
// not a valid count.
func (t *Transformer) OptionalCount(s string) *float64 {
	v, err := t.ParseCount(s)
	if err != nil {
		return nil
	}

	return &v
}

// ParseTimestampDate reads the calendar date from an ISO-like timestamp such
// as "2023-09-11T00:00:00" or "2023-09-11". The time of day is discarded.
func ParseTimestampDate(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(models.DateLayout) {
		return models.Date{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
	}

	if len(s) > len(models.DateLayout) {
		if sep := s[len(models.DateLayout)]; sep != 'T' && sep != ' ' {
			return models.Date{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
		}
	}

	date, err := models.ParseDate(s[:len(models.DateLayout)])
	if err != nil {
		return models.Date{}, fmt.Errorf("%w %q: %w", ErrInvalidDate, s, err)
	}

	return date, nil
}

// ParseWholeNumber parses an integer, also accepting integral decimals such
// as "2021.0" that spreadsheet exports produce.
func ParseWholeNumber(s string) (int, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}

	return int(f), nil
}
