// =============================================================================
// B2B-WC Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main workhorse of the tool.
// It runs the full conversion pipeline: read the catalog, transform the
// products, download assets, validate, and write the import CSV.
//
// COMMAND USAGE:
//   b2bwc process
//   b2bwc process --dry-run
//   b2bwc process --skip-downloads --limit 50
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvanta42/b2b-wc-converter/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun converts and validates but writes no output.
var dryRun bool

// skipDownloads disables asset downloading for this run.
var skipDownloads bool

// rowLimit caps the number of processed rows (0 = all).
var rowLimit int

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the catalog into a WooCommerce import CSV",
	Long: `Convert the configured catalog spreadsheet into a WooCommerce
bulk-import CSV, downloading referenced images along the way.

The run produces:
  - The import CSV (UTF-8 with BOM, one row per valid product)
  - An errors report listing dropped rows and warnings
  - Downloaded image files renamed to their upload names`,
	RunE: runProcess,
}

// runProcess executes the conversion pipeline.
func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Ctrl-C cancels the run; in-flight downloads stop, nothing is written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("=========================================")
	fmt.Println("B2B-WC Converter - Catalog Processing")
	fmt.Println("=========================================")
	fmt.Printf("Input:  %s\n", cfg.InputFile)
	fmt.Printf("Output: %s\n", cfg.OutputFile)
	if dryRun {
		fmt.Println("Mode:   DRY RUN (no files will be written)")
	}
	fmt.Println()

	result, err := converter.New(cfg, logger).Run(ctx, converter.Options{
		DryRun:        dryRun,
		SkipDownloads: skipDownloads,
		Limit:         rowLimit,
	})
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	printSummary(result)
	return nil
}

// printSummary prints the human-readable run summary.
func printSummary(r *converter.Result) {
	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("Conversion Summary")
	fmt.Println("=========================================")
	fmt.Printf("Rows read:      %d\n", r.TotalRows)
	fmt.Printf("Converted:      %d\n", r.Converted)
	fmt.Printf("Dropped:        %d\n", r.Dropped)
	fmt.Printf("Warnings:       %d\n", r.Warnings)

	if r.Downloads.Total > 0 {
		fmt.Printf("Images:         %d downloaded, %d skipped, %d failed (%.1f MB)\n",
			r.Downloads.Downloaded,
			r.Downloads.Skipped,
			r.Downloads.Failed,
			float64(r.Downloads.Bytes)/(1024*1024))
	}

	if r.OutputPath != "" {
		fmt.Printf("Output file:    %s\n", r.OutputPath)
	}
	if r.ReportPath != "" {
		fmt.Printf("Errors report:  %s\n", r.ReportPath)
	}
	fmt.Printf("Duration:       %s\n", r.Duration.Round(10*time.Millisecond))
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command and its flags.
func init() {
	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Convert and validate without writing any files",
	)

	processCmd.Flags().BoolVar(
		&skipDownloads,
		"skip-downloads",
		false,
		"Skip asset downloading, generate the CSV only",
	)

	processCmd.Flags().IntVar(
		&rowLimit,
		"limit",
		0,
		"Process at most this many rows (0 = all)",
	)

	rootCmd.AddCommand(processCmd)
}
