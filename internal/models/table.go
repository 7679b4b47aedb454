package models

import "slices"

// Table is an ordered set of rows with the ordered union of their columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table and derives its column list from the rows.
func NewTable(rows []Row) *Table {
	t := &Table{Rows: rows}
	t.Columns = ColumnsOf(rows)

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnsOf returns the core columns, then day_type when any row's source
// had the field, then extra fields in first-appearance order.
func ColumnsOf(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}

	cols := slices.Clone(CoreColumns)

	for _, r := range rows {
		if r.HasDayType {
			cols = append(cols, ColumnDayType)

			break
		}
	}

	for _, r := range rows {
		for _, f := range r.Extra {
			if !slices.Contains(cols, f.Name) {
				cols = append(cols, f.Name)
			}
		}
	}

	return cols
}
