package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "ridership.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
years:
  start: 2020
  end: 2022
sources:
  data_dir: "./testdata"
  chicago:
    dir: "rdf"
    pattern: "*.rdf"
  philadelphia:
    pattern: "*By_Route*.csv"
output:
  path: "./out/unified.csv"
  write_checksum: true
logging:
  level: "debug"
`

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}

	if cfg.Years.Start != 2019 || cfg.Years.End != 2025 {
		t.Errorf("Expected years 2019-2025, got %s", cfg.Years)
	}

	if cfg.Output.Path != "Unified_Ridership_2019_2025.csv" {
		t.Errorf("Unexpected default output path %q", cfg.Output.Path)
	}

	wantChicago := filepath.Join("Data", "rdf_CTA__Ridership__Daily_by_Route_routes_2001_2025", "*.rdf")
	if got := cfg.ChicagoGlob(); got != wantChicago {
		t.Errorf("ChicagoGlob() = %q, want %q", got, wantChicago)
	}

	wantPhilly := filepath.Join("Data", "*By_Route*.csv")
	if got := cfg.PhiladelphiaGlob(); got != wantPhilly {
		t.Errorf("PhiladelphiaGlob() = %q, want %q", got, wantPhilly)
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Years.Start != 2020 || cfg.Years.End != 2022 {
		t.Errorf("Expected years 2020-2022, got %s", cfg.Years)
	}

	if !cfg.Output.WriteChecksum {
		t.Error("Expected write_checksum to be true")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", cfg.Logging.Level)
	}

	if got := cfg.ChicagoGlob(); got != filepath.Join("testdata", "rdf", "*.rdf") {
		t.Errorf("Unexpected ChicagoGlob %q", got)
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	configPath := createTempConfigFile(t, "years:\n  start: 2021\n  end: 2021\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Output.Path != DefaultOutputFile {
		t.Errorf("Expected default output path, got %q", cfg.Output.Path)
	}

	if cfg.Sources.Philadelphia.Pattern != DefaultPhillyGlob {
		t.Errorf("Expected default philadelphia pattern, got %q", cfg.Sources.Philadelphia.Pattern)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/ridership.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		mutate  func(c *Config)
		wantErr error
		name    string
	}{
		{
			name:    "Zero start year",
			mutate:  func(c *Config) { c.Years.Start = 0 },
			wantErr: ErrInvalidStartYear,
		},
		{
			name:    "Negative end year",
			mutate:  func(c *Config) { c.Years.End = -1 },
			wantErr: ErrInvalidEndYear,
		},
		{
			name:    "Start after end",
			mutate:  func(c *Config) { c.Years = YearRange{Start: 2025, End: 2019} },
			wantErr: ErrStartAfterEnd,
		},
		{
			name:    "Missing chicago pattern",
			mutate:  func(c *Config) { c.Sources.Chicago.Pattern = "" },
			wantErr: ErrMissingChicagoPattern,
		},
		{
			name:    "Missing philadelphia pattern",
			mutate:  func(c *Config) { c.Sources.Philadelphia.Pattern = "" },
			wantErr: ErrMissingPhillyPattern,
		},
		{
			name:    "Malformed glob",
			mutate:  func(c *Config) { c.Sources.Philadelphia.Pattern = "[" },
			wantErr: ErrInvalidPattern,
		},
		{
			name:    "Missing output path",
			mutate:  func(c *Config) { c.Output.Path = "" },
			wantErr: ErrMissingOutputPath,
		},
		{
			name:    "Invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_LevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"DEBUG", "Warn", "ERROR", "info"} {
		cfg := Default()
		cfg.Logging.Level = level

		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with level %q returned %v", level, err)
		}
	}
}

func TestConfig_Validate_PatternOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		cfg := Default()
		cfg.Sources.Chicago.Pattern = "["
		cfg.Sources.Philadelphia.Pattern = "[a-"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidPattern) {
			t.Fatalf("Expected ErrInvalidPattern, got %v", err)
		}

		if !strings.Contains(err.Error(), "sources.chicago.pattern") {
			t.Fatalf("Expected the chicago pattern to be reported first, got %v", err)
		}
	}
}

func TestYearRange_Contains(t *testing.T) {
	r := YearRange{Start: 2019, End: 2025}

	tests := []struct {
		year int
		want bool
	}{
		{2018, false},
		{2019, true},
		{2022, true},
		{2025, true},
		{2026, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.year); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyEnv(mapLookup(map[string]string{
		EnvStartYear: "2020",
		EnvEndYear:   "2021",
		EnvOutput:    "out.csv",
		EnvDataDir:   "/srv/data",
		EnvLogLevel:  "warn",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Years.Start != 2020 || cfg.Years.End != 2021 {
		t.Errorf("Expected years 2020-2021, got %s", cfg.Years)
	}

	if cfg.Output.Path != "out.csv" {
		t.Errorf("Expected output 'out.csv', got %q", cfg.Output.Path)
	}

	if cfg.Sources.DataDir != "/srv/data" {
		t.Errorf("Expected data dir '/srv/data', got %q", cfg.Sources.DataDir)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected level 'warn', got %q", cfg.Logging.Level)
	}
}

func TestConfig_ApplyEnv_InvalidYear(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyEnv(mapLookup(map[string]string{EnvStartYear: "twenty"}))
	if !errors.Is(err, ErrInvalidEnvValue) {
		t.Fatalf("Expected ErrInvalidEnvValue, got %v", err)
	}

	if cfg.Years.Start != DefaultStartYear {
		t.Errorf("Start year changed on failed override: %d", cfg.Years.Start)
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("RIDERSHIP_OUTPUT=from-dotenv.csv\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	// Register cleanup for the variable godotenv will set.
	t.Setenv(EnvOutput, "")
	os.Unsetenv(EnvOutput)

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Output.Path != "from-dotenv.csv" {
		t.Errorf("Expected output from dotenv, got %q", cfg.Output.Path)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("Expected error for missing env file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Years.Start = 2021

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Years.Start != 2021 {
		t.Errorf("Expected start year 2021, got %d", loaded.Years.Start)
	}
}
