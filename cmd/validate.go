// =============================================================================
// B2B-WC Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the catalog without writing any output. Operators run it after the
// supplier ships a new catalog revision to see what changed before
// committing to a full conversion.
//
// COMMAND USAGE:
//   b2bwc validate
//   b2bwc validate --config ./my.yaml
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvanta42/b2b-wc-converter/internal/catalog"
	"github.com/kvanta42/b2b-wc-converter/internal/converter"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and catalog without converting",
	Long: `Validate the configuration file and the catalog spreadsheet:
verify required columns are present, run the full transformation and
validation pipeline, and report what a real run would drop. No files
are written and no assets are downloaded.`,
	RunE: runValidate,
}

// runValidate loads the config, inspects the catalog header, then performs a
// dry run of the pipeline.
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	fmt.Printf("Configuration OK: %s\n", cfgFile)

	data, err := catalog.Read(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("catalog error: %w", err)
	}
	fmt.Printf("Catalog OK: %s (%d rows, %d columns)\n",
		cfg.InputFile, len(data.Rows), len(data.Headers))

	if missing := data.CheckColumns(cfg.Catalog.RequiredColumns); len(missing) > 0 {
		return fmt.Errorf("catalog is missing required columns: %v", missing)
	}

	result, err := converter.New(cfg, logger).Run(context.Background(), converter.Options{
		DryRun:        true,
		SkipDownloads: true,
	})
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}

	fmt.Println()
	fmt.Printf("Products that would be converted: %d\n", result.Converted)
	fmt.Printf("Products that would be dropped:   %d\n", result.Dropped)
	fmt.Printf("Warnings:                         %d\n", result.Warnings)

	if result.Dropped > 0 {
		fmt.Println("\nRun 'b2bwc process' to generate the CSV and the detailed errors report.")
	}

	return nil
}

// init registers the validate command.
func init() {
	rootCmd.AddCommand(validateCmd)
}
