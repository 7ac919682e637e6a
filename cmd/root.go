// =============================================================================
// B2B-WC Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   b2bwc (root)
//   ├── process  (b2bwc process)   full conversion run
//   ├── download (b2bwc download)  fetch catalog images, no CSV
//   ├── validate (b2bwc validate)  check catalog + config, write nothing
//   └── version  (b2bwc version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kvanta42/b2b-wc-converter/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logger is the shared logger, initialized in PersistentPreRunE.
var logger *zap.Logger

// logLevel is adjustable after the config file is read.
var logLevel zap.AtomicLevel

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "b2bwc",
	Short: "B2B-WC Converter - Transform supplier catalogs into WooCommerce import CSVs",

	Long: `B2B-WC Converter is a CLI tool that transforms supplier catalog
spreadsheets (XLSX or CSV) into CSV files suitable for bulk import into
WooCommerce.

Key Features:
  - Price, SKU and category cleanup tuned for Russian B2B catalogs
  - Grouped characteristics rendered into the product description
  - WooCommerce filter attributes (pa_*) mapped from characteristics
  - Concurrent, rate-limited image downloading with resume support
  - Optional mirroring of downloaded assets to S3-compatible storage
  - Validation with a detailed errors report

Example Usage:
  b2bwc process                        # Convert the configured catalog
  b2bwc process --config ./my.yaml     # Use a custom configuration file
  b2bwc process --skip-downloads       # CSV only, leave assets alone
  b2bwc download                       # Fetch images only, no CSV
  b2bwc validate                       # Check the catalog without converting`,

	// Print the help message when called without a subcommand.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig reads the configuration file and aligns the logger level with
// it. The --verbose flag wins over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		logLevel.SetLevel(level)
	}

	return cfg, nil
}

// initLogger builds the shared zap logger. Console-friendly output: the tool
// runs from a terminal or cron, not behind a log collector.
func initLogger() error {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logLevel = zap.NewAtomicLevelAt(level)

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = logLevel
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}
