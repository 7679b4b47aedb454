// Package sink persists the unified ridership table.
package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ridership/internal/models"
)

// WriteCSV writes the header and rows of table to w. Cells a row has no
// value for are written empty.
func WriteCSV(w io.Writer, table *models.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))

	for i := range table.Rows {
		for j, col := range table.Columns {
			record[j] = ""
			if v := table.Rows[i].Value(col); v != nil {
				record[j] = *v
			}
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// CSVFile writes a table to a fixed path.
type CSVFile struct {
	path string
}

// NewCSVFile creates a sink for path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Path returns the destination path.
func (s *CSVFile) Path() string {
	return s.path
}

// Write stores table at the destination. The data goes to a temporary file
// in the same directory which is renamed over the destination only after it
// was fully written, so a failed write never leaves a partial table behind.
func (s *CSVFile) Write(table *models.Table) (err error) {
	dir := filepath.Dir(s.path)
	if mkdirErr := os.MkdirAll(dir, 0755); mkdirErr != nil {
		return fmt.Errorf("failed to create output directory: %w", mkdirErr)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteCSV(tmp, table); err != nil {
		return err
	}

	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}
