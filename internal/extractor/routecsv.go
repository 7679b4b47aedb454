package extractor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ridership/internal/logger"
	"ridership/internal/models"
	"ridership/internal/normalizer"
	"ridership/pkg/utils"
)

// RouteResult is the output of RouteCSVExtractor.Extract. Path is empty when
// no file matched.
type RouteResult struct {
	Table    *models.Table
	Path     string
	Seen     int
	Retained int
}

// RouteCSVExtractor reads the Philadelphia monthly ridership-by-route CSV.
type RouteCSVExtractor struct {
	processor *normalizer.Processor
	strings   *utils.StringHelper
	log       *logger.Logger
}

// NewRouteCSVExtractor creates an extractor using p for filtering and mapping.
func NewRouteCSVExtractor(p *normalizer.Processor, log *logger.Logger) *RouteCSVExtractor {
	return &RouteCSVExtractor{
		processor: p,
		strings:   utils.NewStringHelper(),
		log:       log.With("source", string(models.CityPhiladelphia)),
	}
}

// Extract reads the single file matching pattern. When nothing matches it
// logs an error and returns an empty table so the caller can decide whether
// to proceed. More than one match is ErrAmbiguousSource.
func (e *RouteCSVExtractor) Extract(pattern string) (*RouteResult, error) {
	paths, err := Discover(pattern)
	if err != nil {
		return nil, err
	}

	switch len(paths) {
	case 0:
		e.log.Error("route file not found", "pattern", pattern)

		return &RouteResult{Table: models.NewTable(nil)}, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q matched %v", ErrAmbiguousSource, pattern, paths)
	}

	result, err := e.readFile(paths[0])
	if err != nil {
		return nil, err
	}

	e.log.Info("extracted rows", "path", result.Path, "rows", result.Retained, "read", result.Seen)

	return result, nil
}

func (e *RouteCSVExtractor) readFile(path string) (*RouteResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open route file: %w", err)
	}
	defer f.Close()

	result, err := e.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result.Path = path

	return result, nil
}

// ReadTable parses a route CSV stream. A leading byte order mark is removed
// (UTF-16 input is decoded to UTF-8).
func (e *RouteCSVExtractor) ReadTable(r io.Reader) (*RouteResult, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrMalformedTable)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}

	for i := range header {
		header[i] = e.strings.TrimWhitespace(header[i])
	}

	if err := e.processor.Validator().ValidateRouteHeader(header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}

	result := &RouteResult{}

	var rows []models.Row

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}

		line, _ := reader.FieldPos(0)
		rec := &models.RouteRecord{Line: line, Values: make(map[string]string, len(header))}

		for i, h := range header {
			rec.Values[h] = fields[i]
		}

		result.Seen++

		row, ok, err := e.processor.ProcessRoute(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}

		if !ok {
			continue
		}

		result.Retained++
		rows = append(rows, row)
	}

	result.Table = models.NewTable(rows)

	return result, nil
}
