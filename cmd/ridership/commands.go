package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ridership/internal/config"
	"ridership/internal/logger"
	"ridership/internal/pipeline"
	"ridership/pkg/metadata"
)

const defaultConfigPath = "configs/ridership.yaml"

type options struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ridership",
		Short: "Build the unified Chicago and Philadelphia ridership table",
		Long: `Reads the CTA daily ridership RDF export and the SEPTA monthly
ridership-by-route CSV, keeps the records inside the configured year range,
maps both onto one schema and writes a single CSV file.

No output is written unless both sources yield at least one row.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to YAML configuration file (default "+defaultConfigPath+" if present)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file with RIDERSHIP_* overrides")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")

	cmd.AddCommand(newVerifyCommand(opts), newInitConfigCommand(opts))

	return cmd
}

func newVerifyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the unified table against its checksum file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if _, err := metadata.Verify(cfg.Output.Path, cfg.ChecksumPath()); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", cfg.Output.Path)

			return nil
		},
	}
}

func newInitConfigCommand(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the resolved configuration as a YAML file",
		Long: `Writes the configuration the pipeline would run with (defaults, then any
--config file, environment overrides and flags) to path, which defaults to
` + defaultConfigPath + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if err := cfg.SaveConfig(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Logging.Level)
	log.Debug("configuration loaded", "config", cfg.String())

	result, runErr := pipeline.New(cfg, log).Run()

	if cfg.Logging.ShowSummary && result != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), result.Summary())
	}

	if runErr != nil {
		if errors.Is(runErr, pipeline.ErrEmptySource) {
			log.Error("critical error: one or both datasets failed to load, no output written")
		}

		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %d rows to %s (%s)\n",
		result.Unified.Len(), result.OutputPath, result.Duration.Round(time.Millisecond))

	return nil
}

// loadConfig resolves configuration: defaults, then the YAML file, then the
// environment (optionally seeded from a dotenv file), then flags.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()

	path := opts.configFile
	if path == "" {
		if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
			path = defaultConfigPath
		}
	}

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if opts.envFile != "" {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
