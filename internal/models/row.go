package models

import "strconv"

// City labels one of the two known sources.
type City string

// Known source cities.
const (
	CityChicago      City = "Chicago"
	CityPhiladelphia City = "Philadelphia"
)

// Column names of the unified table.
const (
	ColumnDate           = "date"
	ColumnCity           = "city"
	ColumnRoute          = "route"
	ColumnRidershipCount = "ridership_count"
	ColumnDayType        = "day_type"
)

// CoreColumns are present on every normalized row, in output order.
var CoreColumns = []string{ColumnDate, ColumnCity, ColumnRoute, ColumnRidershipCount}

// IsKnown reports whether c is one of the known source cities.
func (c City) IsKnown() bool {
	return c == CityChicago || c == CityPhiladelphia
}

// Row is a normalized ridership observation. A nil RidershipCount is a
// missing or unreadable figure and is written as an empty cell. HasDayType
// is set when the source record carried a daytype field, even a null one.
type Row struct {
	DayType        *string
	RidershipCount *float64
	City           City
	Route          string
	Extra          []Field
	Date           Date
	HasDayType     bool
}

// Value returns the cell for a column name, or nil when the row has no value
// for it.
func (r *Row) Value(column string) *string {
	var s string

	switch column {
	case ColumnDate:
		s = r.Date.String()
	case ColumnCity:
		s = string(r.City)
	case ColumnRoute:
		s = r.Route
	case ColumnRidershipCount:
		if r.RidershipCount == nil {
			return nil
		}

		s = FormatCount(*r.RidershipCount)
	case ColumnDayType:
		return r.DayType
	default:
		for _, f := range r.Extra {
			if f.Name == column {
				return f.Value
			}
		}

		return nil
	}

	return &s
}

// FormatCount renders a ridership count with the fewest digits needed.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Count returns a pointer to v for use as Row.RidershipCount.
func Count(v float64) *float64 {
	return &v
}
