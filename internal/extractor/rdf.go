package extractor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html/charset"

	"ridership/internal/logger"
	"ridership/internal/models"
	"ridership/internal/normalizer"
)

// XML nesting levels inside an RDF document.
const (
	depthRoot  = 1
	depthRow   = 2
	depthField = 3
)

// DocumentResult is the outcome of reading one RDF document. Err is set for
// failed documents; Rows and Stats for successful ones.
type DocumentResult struct {
	Err   error
	Path  string
	Rows  []models.Row
	Stats normalizer.TreeStats
}

// TreeResult is the output of RDFExtractor.Extract.
type TreeResult struct {
	Table     *models.Table
	Successes []DocumentResult
	Failures  []DocumentResult
	Stats     normalizer.TreeStats
}

// DocumentCount returns the number of documents discovered.
func (r *TreeResult) DocumentCount() int {
	return len(r.Successes) + len(r.Failures)
}

// RDFExtractor reads the Chicago daily ridership RDF export.
type RDFExtractor struct {
	processor *normalizer.Processor
	log       *logger.Logger
}

// NewRDFExtractor creates an extractor using p for filtering and mapping.
func NewRDFExtractor(p *normalizer.Processor, log *logger.Logger) *RDFExtractor {
	return &RDFExtractor{
		processor: p,
		log:       log.With("source", string(models.CityChicago)),
	}
}

// Discover returns the documents matching pattern in lexical order.
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	slices.Sort(matches)

	return matches, nil
}

// Extract reads every document matching pattern. A document that fails to
// read or parse is reported in Failures and skipped; it never aborts the
// extraction.
func (e *RDFExtractor) Extract(pattern string) (*TreeResult, error) {
	paths, err := Discover(pattern)
	if err != nil {
		return nil, err
	}

	e.log.Info("discovered documents", "pattern", pattern, "count", len(paths))

	result := &TreeResult{}

	var rows []models.Row

	for _, path := range paths {
		doc := e.extractDocument(path)
		if doc.Err != nil {
			e.log.Warn("could not read document", "path", path, "error", doc.Err)
			result.Failures = append(result.Failures, doc)

			continue
		}

		e.log.Debug("document processed",
			"path", path,
			"records", doc.Stats.Seen,
			"retained", doc.Stats.Retained,
			"dropped", doc.Stats.Dropped,
			"rejected", doc.Stats.Rejected,
		)

		result.Successes = append(result.Successes, doc)
		result.Stats.Add(doc.Stats)
		rows = append(rows, doc.Rows...)
	}

	result.Table = models.NewTable(rows)

	if result.Table.Empty() {
		e.log.Warn("no matching data found", "documents", len(paths), "failed", len(result.Failures))
	} else {
		e.log.Info("extracted rows", "rows", result.Table.Len(), "documents", len(result.Successes))
	}

	return result, nil
}

func (e *RDFExtractor) extractDocument(path string) DocumentResult {
	records, err := readDocument(path)
	if err != nil {
		return DocumentResult{Path: path, Err: err}
	}

	rows, stats, rejections := e.processor.ProcessTree(records)
	for _, r := range rejections {
		e.log.Debug("record rejected", "path", path, "index", r.Index, "error", r.Err)
	}

	return DocumentResult{Path: path, Rows: rows, Stats: stats}
}

func readDocument(path string) ([]models.TreeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentParse, err)
	}
	defer f.Close()

	records, err := ParseDocument(f)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ParseDocument reads the row fragments of one RDF document: every child of
// the root element is a row and every child of a row is a field. Field names
// lose their namespace; a field's value is its leading text, or nil when it
// has none.
func ParseDocument(r io.Reader) ([]models.TreeRecord, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		records  []models.TreeRecord
		current  models.TreeRecord
		name     string
		text     strings.Builder
		hasText  bool
		sawChild bool
		sawRoot  bool
		depth    int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDocumentParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++

			switch depth {
			case depthRoot:
				if sawRoot {
					return nil, fmt.Errorf("%w: content after root element", ErrDocumentParse)
				}

				sawRoot = true
			case depthRow:
				current = models.TreeRecord{}
			case depthField:
				name = t.Name.Local
				text.Reset()
				hasText = false
				sawChild = false
			default:
				sawChild = true
			}

		case xml.CharData:
			if depth == depthField && !sawChild {
				text.Write(t)
				hasText = true
			}

		case xml.EndElement:
			switch depth {
			case depthField:
				var value *string
				if hasText {
					s := text.String()
					value = &s
				}

				current.Set(name, value)
			case depthRow:
				records = append(records, current)
			}

			depth--
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrDocumentParse)
	}

	return records, nil
}
