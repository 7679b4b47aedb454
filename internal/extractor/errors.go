// Package extractor reads the two municipal ridership feeds and produces
// normalized tables.
package extractor

import "errors"

// Extraction errors.
var (
	// ErrDocumentParse marks an RDF document that could not be read or parsed.
	// It is recoverable: the document is skipped.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrMalformedTable marks a route CSV that is missing required columns or
	// carries values that cannot be converted. It aborts the run.
	ErrMalformedTable = errors.New("malformed route table")

	// ErrAmbiguousSource is returned when more than one file matches the
	// route CSV pattern.
	ErrAmbiguousSource = errors.New("multiple files match source pattern")
)
