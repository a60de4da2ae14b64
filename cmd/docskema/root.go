package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/docskema/i18n"
	"github.com/reoring/docskema/internal/config"
	"github.com/reoring/docskema/registry"
	"github.com/reoring/docskema/schemafile"
)

var (
	// Global flags
	cfgFile      string
	schemaPath   string
	logLevel     string
	outputFormat string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docskema",
	Short: "Describe, mock and validate document schemas",
	Long: `docskema works with schema definition files listing documents and
named objects.

  docskema descriptor -f schema.yaml           # emit schema descriptors
  docskema mock -f schema.yaml --type post     # generate a post
  docskema validate -f schema.yaml --type post data.json`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "f", "", "schema definition file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: json or yaml (overrides config)")
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if outputFormat != "" {
		if outputFormat != "json" && outputFormat != "yaml" {
			return fmt.Errorf("--output must be json or yaml, got %q", outputFormat)
		}
		c.Output.Format = outputFormat
	}
	cfg = c
	i18n.SetLanguage(cfg.Language)

	output := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}
	logger = zerolog.New(output).Level(cfg.LogLevel()).With().Timestamp().Logger()
	return nil
}

// loadSchema loads the --schema file with the configured mock options.
func loadSchema() (*registry.Schema, error) {
	if schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	s, err := schemafile.LoadFile(schemaPath,
		registry.WithLogger(logger),
		registry.WithMockOptions(cfg.MockOptions()...),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("schema", schemaPath).Strs("types", s.Names()).Msg("schema loaded")
	return s, nil
}
