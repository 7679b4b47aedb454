package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"ridership/internal/models"
)

// ErrEmptySource is returned when either source produced no rows. Nothing
// is written in that case.
var ErrEmptySource = errors.New("source produced no rows")

// Merge concatenates the Chicago rows followed by the Philadelphia rows. Both
// tables must be non-empty. Rows are neither sorted nor deduplicated.
func Merge(chicago, philadelphia *models.Table) (*models.Table, error) {
	var empty []string

	if chicago.Empty() {
		empty = append(empty, string(models.CityChicago))
	}

	if philadelphia.Empty() {
		empty = append(empty, string(models.CityPhiladelphia))
	}

	if len(empty) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrEmptySource, empty)
	}

	rows := make([]models.Row, 0, chicago.Len()+philadelphia.Len())
	rows = append(rows, chicago.Rows...)
	rows = append(rows, philadelphia.Rows...)

	return &models.Table{
		Columns: unionColumns(chicago.Columns, philadelphia.Columns),
		Rows:    rows,
	}, nil
}

func unionColumns(first, second []string) []string {
	cols := slices.Clone(first)

	for _, c := range second {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}

	return cols
}
