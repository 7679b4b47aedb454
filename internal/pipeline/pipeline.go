// Package pipeline runs the ridership extraction, merge and persist stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"ridership/internal/config"
	"ridership/internal/extractor"
	"ridership/internal/formatter"
	"ridership/internal/logger"
	"ridership/internal/models"
	"ridership/internal/normalizer"
	"ridership/internal/sink"
	"ridership/internal/validator"
	"ridership/pkg/metadata"
)

// Result describes a pipeline run. Fields are filled as stages complete, so
// a failed run still reports what was extracted.
type Result struct {
	Chicago      *extractor.TreeResult
	Philadelphia *extractor.RouteResult
	Unified      *models.Table
	OutputPath   string
	Checksum     string
	Duration     time.Duration
}

// Pipeline wires the extractors, validator and sink for one configuration.
type Pipeline struct {
	cfg       *config.Config
	log       *logger.Logger
	chicago   *extractor.RDFExtractor
	philly    *extractor.RouteCSVExtractor
	validator *validator.TableValidator
	sink      *sink.CSVFile
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	processor := normalizer.NewProcessor(cfg.Years)

	return &Pipeline{
		cfg:       cfg,
		log:       log,
		chicago:   extractor.NewRDFExtractor(processor, log),
		philly:    extractor.NewRouteCSVExtractor(processor, log),
		validator: validator.NewTableValidator(cfg.Years),
		sink:      sink.NewCSVFile(cfg.Output.Path),
	}
}

// Run extracts both sources, merges them and writes the unified table.
// Any returned error means no output was written, except for a failure
// while writing the checksum sidecar.
func (p *Pipeline) Run() (*Result, error) {
	start := time.Now()
	result := &Result{}

	defer func() {
		result.Duration = time.Since(start)
	}()

	p.log.Info("Phase 1: extracting Chicago data", "years", p.cfg.Years.String())

	chicago, err := p.chicago.Extract(p.cfg.ChicagoGlob())
	if err != nil {
		return result, fmt.Errorf("chicago extraction failed: %w", err)
	}

	result.Chicago = chicago

	p.log.Info("Phase 2: extracting Philadelphia data", "years", p.cfg.Years.String())

	philly, err := p.philly.Extract(p.cfg.PhiladelphiaGlob())
	if err != nil {
		return result, fmt.Errorf("philadelphia extraction failed: %w", err)
	}

	result.Philadelphia = philly

	p.log.Info("Phase 3: merging datasets")

	unified, err := Merge(chicago.Table, philly.Table)
	if err != nil {
		p.log.Error("one or both datasets failed to load", "error", err)
		return result, err
	}

	result.Unified = unified

	if vErr := p.validator.Validate(unified).Err(); vErr != nil {
		return result, vErr
	}

	if err := p.sink.Write(unified); err != nil {
		return result, fmt.Errorf("failed to write output: %w", err)
	}

	result.OutputPath = p.sink.Path()

	if err := p.checksum(result); err != nil {
		return result, err
	}

	p.log.Log(context.Background(), result.status(), "unified dataset saved",
		"path", result.OutputPath,
		"rows", unified.Len(),
		"failed_documents", len(chicago.Failures),
		"rejected_records", chicago.Stats.Rejected,
		"sha256", result.Checksum,
	)

	return result, nil
}

// status is warn when part of the Chicago input was skipped.
func (r *Result) status() slog.Level {
	if r.Chicago != nil && (len(r.Chicago.Failures) > 0 || r.Chicago.Stats.Rejected > 0) {
		return slog.LevelWarn
	}

	return slog.LevelInfo
}

// checksum hashes the output. Without write_checksum a sidecar from an
// earlier run is removed so it cannot describe the new file.
func (p *Pipeline) checksum(result *Result) error {
	if !p.cfg.Output.WriteChecksum {
		hash, err := metadata.HashFile(result.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to hash output: %w", err)
		}

		result.Checksum = hash

		sidecar := p.cfg.ChecksumPath()
		if err := os.Remove(sidecar); err == nil {
			p.log.Info("removed stale checksum file", "path", sidecar)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale checksum file: %w", err)
		}

		return nil
	}

	hash, err := metadata.Sign(result.OutputPath, p.cfg.ChecksumPath())
	if err != nil {
		return fmt.Errorf("failed to sign output: %w", err)
	}

	result.Checksum = hash

	return nil
}

// Summary renders per-source counts of a run as an aligned table.
func (r *Result) Summary() string {
	header := []string{"Source", "Files", "Failed", "Records", "Retained", "Dropped", "Rejected"}

	var rows [][]string

	if r.Chicago != nil {
		rows = append(rows, []string{
			string(models.CityChicago),
			strconv.Itoa(r.Chicago.DocumentCount()),
			strconv.Itoa(len(r.Chicago.Failures)),
			strconv.Itoa(r.Chicago.Stats.Seen),
			strconv.Itoa(r.Chicago.Stats.Retained),
			strconv.Itoa(r.Chicago.Stats.Dropped),
			strconv.Itoa(r.Chicago.Stats.Rejected),
		})
	}

	if r.Philadelphia != nil {
		files := 0
		if r.Philadelphia.Path != "" {
			files = 1
		}

		rows = append(rows, []string{
			string(models.CityPhiladelphia),
			strconv.Itoa(files),
			"0",
			strconv.Itoa(r.Philadelphia.Seen),
			strconv.Itoa(r.Philadelphia.Retained),
			strconv.Itoa(r.Philadelphia.Seen - r.Philadelphia.Retained),
			"0",
		})
	}

	if r.Unified != nil {
		rows = append(rows, []string{"Unified", "", "", "", strconv.Itoa(r.Unified.Len()), "", ""})
	}

	return formatter.RenderTable(header, rows)
}
