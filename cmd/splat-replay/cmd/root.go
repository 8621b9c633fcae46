// Package cmd implements splat-replay's CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/saw4405/splat-replay/internal/config"
	"github.com/saw4405/splat-replay/internal/logging"
	"github.com/saw4405/splat-replay/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// appConfig and logger are populated by rootCmd's PersistentPreRunE
	// before any subcommand's RunE runs.
	appConfig config.Config
	appViper  *viper.Viper
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "splat-replay",
	Short:   "Automated capture, edit, and upload pipeline for Splatoon recordings",
	Version: version.String(),
	Long: `splat-replay watches an OBS-driven capture session for Splatoon matches,
segments and annotates each recorded clip with match metadata read off the
HUD, then edits and uploads the result to YouTube once play stops.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initAppConfig()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: splat-replay.toml searched in ., $HOME, /etc/splat-replay)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

// initAppConfig loads configuration the way the teacher's initConfig
// wires cmd/tvarr's, adapted to internal/config's explicit-path New/Load
// (rather than a package-level viper singleton), then builds the process
// logger and installs it as both the cobra command tree's and slog's default.
func initAppConfig() error {
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		v.Set("logging.level", logLevel)
	}
	if logFormat != "" {
		v.Set("logging.format", logFormat)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	appViper = v
	appConfig = cfg
	logger = logging.New(cfg.Logging.Settings())
	slog.SetDefault(logger)
	return nil
}
