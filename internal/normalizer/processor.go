// Package normalizer maps the raw records of both sources onto the common
// ridership row schema.
package normalizer

import (
	"fmt"

	"ridership/internal/config"
	"ridership/internal/models"
)

// TreeStats counts what happened to the tree records of one document.
type TreeStats struct {
	Seen     int
	Retained int
	Dropped  int
	Rejected int
}

// Add accumulates other into s.
func (s *TreeStats) Add(other TreeStats) {
	s.Seen += other.Seen
	s.Retained += other.Retained
	s.Dropped += other.Dropped
	s.Rejected += other.Rejected
}

// Rejection records why a tree record was not converted.
type Rejection struct {
	Err   error
	Index int
}

// Processor handles validation and transformation of raw records.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a processor for the given inclusive year range.
func NewProcessor(years config.YearRange) *Processor {
	return &Processor{
		validator:   NewValidator(years),
		transformer: NewTransformer(),
	}
}

// Validator returns the processor's validator.
func (p *Processor) Validator() *Validator {
	return p.validator
}

// ProcessTree converts the records of one RDF document. Records without a
// usable in-range date are dropped. Records whose date has a valid year but
// is not a calendar date are rejected and reported.
func (p *Processor) ProcessTree(records []models.TreeRecord) ([]models.Row, TreeStats, []Rejection) {
	var (
		rows       []models.Row
		stats      TreeStats
		rejections []Rejection
	)

	for i := range records {
		stats.Seen++

		if _, err := p.validator.CheckTreeDate(&records[i]); err != nil {
			stats.Dropped++
			continue
		}

		row, err := p.transformer.TreeRow(&records[i])
		if err != nil {
			stats.Rejected++
			rejections = append(rejections, Rejection{Index: i, Err: err})

			continue
		}

		stats.Retained++
		rows = append(rows, row)
	}

	return rows, stats, rejections
}

// ProcessRoute converts one route CSV record. It returns false when the
// record's year is outside the configured range. Any parse failure is an
// error; the route feed has no per-row recovery.
func (p *Processor) ProcessRoute(rec *models.RouteRecord) (models.Row, bool, error) {
	year, err := p.transformer.ParseYear(rec)
	if err != nil {
		return models.Row{}, false, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	if !p.validator.InRange(year) {
		return models.Row{}, false, nil
	}

	row, err := p.transformer.RouteRow(year, rec)
	if err != nil {
		return models.Row{}, false, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	return row, true, nil
}
