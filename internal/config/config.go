// Package config provides configuration management for the ridership pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults used when no configuration file overrides them.
const (
	DefaultStartYear   = 2019
	DefaultEndYear     = 2025
	DefaultOutputFile  = "Unified_Ridership_2019_2025.csv"
	DefaultDataDir     = "Data"
	DefaultChicagoDir  = "rdf_CTA__Ridership__Daily_by_Route_routes_2001_2025"
	DefaultChicagoGlob = "*.rdf"
	DefaultPhillyGlob  = "*By_Route*.csv"
	DefaultLogLevel    = "info"
)

// Environment variables that override file configuration.
const (
	EnvStartYear = "RIDERSHIP_START_YEAR"
	EnvEndYear   = "RIDERSHIP_END_YEAR"
	EnvOutput    = "RIDERSHIP_OUTPUT"
	EnvDataDir   = "RIDERSHIP_DATA_DIR"
	EnvLogLevel  = "RIDERSHIP_LOG_LEVEL"
)

// Configuration validation errors.
var (
	ErrInvalidStartYear      = errors.New("years.start must be a positive year")
	ErrInvalidEndYear        = errors.New("years.end must be a positive year")
	ErrStartAfterEnd         = errors.New("years.start cannot exceed years.end")
	ErrMissingChicagoPattern = errors.New("sources.chicago.pattern is required")
	ErrMissingPhillyPattern  = errors.New("sources.philadelphia.pattern is required")
	ErrInvalidPattern        = errors.New("invalid glob pattern")
	ErrMissingOutputPath     = errors.New("output.path is required")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidEnvValue       = errors.New("invalid environment override")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Years   YearRange     `yaml:"years"`
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Contains reports whether year lies within the inclusive range.
func (r YearRange) Contains(year int) bool {
	return r.Start <= year && year <= r.End
}

// String returns a string representation of the range.
func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// SourcesConfig locates the two input feeds.
type SourcesConfig struct {
	DataDir      string       `yaml:"data_dir"`
	Chicago      SourceConfig `yaml:"chicago"`
	Philadelphia SourceConfig `yaml:"philadelphia"`
}

// SourceConfig is a glob pattern, optionally scoped to a subdirectory of the
// data directory.
type SourceConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// OutputConfig defines where the unified table is written.
type OutputConfig struct {
	Path          string `yaml:"path"`
	WriteChecksum bool   `yaml:"write_checksum"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ShowSummary bool   `yaml:"show_summary"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Years: YearRange{Start: DefaultStartYear, End: DefaultEndYear},
		Sources: SourcesConfig{
			DataDir:      DefaultDataDir,
			Chicago:      SourceConfig{Dir: DefaultChicagoDir, Pattern: DefaultChicagoGlob},
			Philadelphia: SourceConfig{Pattern: DefaultPhillyGlob},
		},
		Output:  OutputConfig{Path: DefaultOutputFile},
		Logging: LoggingConfig{Level: DefaultLogLevel, ShowSummary: true},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are not overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStartYear); ok {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnvValue, EnvStartYear, v)
		}

		c.Years.Start = year
	}

	if v, ok := lookup(EnvEndYear); ok {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnvValue, EnvEndYear, v)
		}

		c.Years.End = year
	}

	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output.Path = v
	}

	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Sources.DataDir = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Years.Start < 1 {
		return ErrInvalidStartYear
	}

	if c.Years.End < 1 {
		return ErrInvalidEndYear
	}

	if c.Years.Start > c.Years.End {
		return fmt.Errorf("%w: %s", ErrStartAfterEnd, c.Years)
	}

	if c.Sources.Chicago.Pattern == "" {
		return ErrMissingChicagoPattern
	}

	if c.Sources.Philadelphia.Pattern == "" {
		return ErrMissingPhillyPattern
	}

	patterns := []struct {
		name    string
		pattern string
	}{
		{"sources.chicago.pattern", c.Sources.Chicago.Pattern},
		{"sources.philadelphia.pattern", c.Sources.Philadelphia.Pattern},
	}

	for _, p := range patterns {
		if _, err := filepath.Match(p.pattern, ""); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPattern, p.name, err)
		}
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ChicagoGlob returns the full glob for the RDF documents.
func (c *Config) ChicagoGlob() string {
	return filepath.Join(c.Sources.DataDir, c.Sources.Chicago.Dir, c.Sources.Chicago.Pattern)
}

// PhiladelphiaGlob returns the full glob for the route CSV file.
func (c *Config) PhiladelphiaGlob() string {
	return filepath.Join(c.Sources.DataDir, c.Sources.Philadelphia.Dir, c.Sources.Philadelphia.Pattern)
}

// ChecksumPath returns the sidecar path for the output checksum.
func (c *Config) ChecksumPath() string {
	return c.Output.Path + ".sha256"
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Years: %s, Chicago: %s, Philadelphia: %s, Output: %s}",
		c.Years,
		c.ChicagoGlob(),
		c.PhiladelphiaGlob(),
		c.Output.Path,
	)
}
