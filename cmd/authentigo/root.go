package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"AuthentiGo/pkg/analyzer/image/authenticity"
	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/logging"
)

var version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "authentigo",
	Short: "AuthentiGo estimates how likely an image is manipulated or AI generated",
	Long: `AuthentiGo scores images on pixel noise, edge density, compression
artifacts and capture metadata, and maps the resulting probability to a
LOW, MEDIUM or HIGH risk level. The score is a heuristic, not a forensic verdict.`,
	SilenceUsage: true,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported image formats and their analyzers",
	Run: func(cmd *cobra.Command, args []string) {
		registry := authenticity.NewDefaultRegistry()

		fmt.Fprintln(cmd.OutOrStdout(), "Supported file formats:")
		for _, format := range registry.GetSupportedFormats() {
			analyzers := registry.GetAnalyzersForFormat(format)
			names := make([]string, 0, len(analyzers))
			for _, a := range analyzers {
				names = append(names, a.Name())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", format, strings.Join(names, ", "))
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "AuthentiGo v%s\n", version)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(analyzeCmd, serveCmd, formatsCmd, versionCmd)
}

// loadConfig reads and validates the config, then installs the logger
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, os.Stderr)

	return cfg, logger, nil
}
