// =============================================================================
// B2B-WC Converter - Download Command
// =============================================================================
//
// This file defines the 'download' command. It fetches the images the catalog
// references without generating the import CSV, so the images directory (and
// the S3 mirror, when enabled) can be filled ahead of the actual conversion
// or refreshed after a partial failure.
//
// COMMAND USAGE:
//   b2bwc download
//   b2bwc download --limit 50
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

// downloadLimit caps the number of processed rows (0 = all).
var downloadLimit int

// =============================================================================
// DOWNLOAD COMMAND DEFINITION
// =============================================================================

// downloadCmd represents the 'download' command.
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the catalog's images without generating the CSV",
	Long: `Fetch every image the catalog references into the configured
download directory, renamed to the upload names the import CSV will use.

Already-fetched files are skipped via the download manifest, so the command
can be re-run until everything is in place.`,
	RunE: runDownload,
}

// runDownload executes the asset-fetching part of the pipeline.
func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if !cfg.Downloads.Enabled {
		return fmt.Errorf("downloads are disabled in the configuration")
	}

	// Ctrl-C cancels the run; in-flight downloads stop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("=========================================")
	fmt.Println("B2B-WC Converter - Asset Download")
	fmt.Println("=========================================")
	fmt.Printf("Input:  %s\n", cfg.InputFile)
	fmt.Printf("Images: %s\n", cfg.ImagesDownloadDir)
	fmt.Println()

	result, err := converter.New(cfg, logger).Run(ctx, converter.Options{
		DownloadOnly: true,
		Limit:        downloadLimit,
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	printDownloadSummary(result)
	return nil
}

// printDownloadSummary prints the human-readable download summary.
func printDownloadSummary(r *converter.Result) {
	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("Download Summary")
	fmt.Println("=========================================")
	fmt.Printf("Rows read:      %d\n", r.TotalRows)
	fmt.Printf("Images:         %d downloaded, %d skipped, %d failed (%.1f MB)\n",
		r.Downloads.Downloaded,
		r.Downloads.Skipped,
		r.Downloads.Failed,
		float64(r.Downloads.Bytes)/(1024*1024))
	fmt.Printf("Duration:       %s\n", r.Duration.Round(10*time.Millisecond))
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the download command and its flags.
func init() {
	downloadCmd.Flags().IntVar(
		&downloadLimit,
		"limit",
		0,
		"Download images for at most this many rows (0 = all)",
	)

	rootCmd.AddCommand(downloadCmd)
}
