// =============================================================================
// B2B-WC Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Run report generation (errors, summary)
//   - Output archival (keeping previous import CSVs)
//   - Directory management
//   - File naming utilities
//
// ARCHIVAL STRATEGY:
//   - The previous output CSV is copied to <log_dir>/archive before a new
//     run overwrites it
//   - Error reports are written next to the output file as
//     <output-stem>_errors.txt
//   - Downloaded assets are never archived; the manifest handles re-runs
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all given directories if they don't exist.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileSize returns the size of the file in bytes, or 0 if it cannot be
// read.
func GetFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// =============================================================================
// REPORT GENERATION
// =============================================================================

// ErrorReportPath derives the errors report path from the output CSV path:
// output/wc_products.csv -> output/wc_products_errors.txt
func ErrorReportPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_errors.txt"
}

// WriteReport writes the lines to path with a generation header. An existing
// report from a previous run is overwritten.
func WriteReport(path string, title string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "%s\n", title)
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "%s\n\n", strings.Repeat("=", 70))

	for _, line := range lines {
		fmt.Fprintln(writer, line)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// =============================================================================
// OUTPUT ARCHIVAL
// =============================================================================

// ArchiveOutputFile copies an existing output file into archiveDir under a
// unique name before it is overwritten. Returns the archive path, or "" when
// there was nothing to archive.
func ArchiveOutputFile(outputPath, archiveDir string) (string, error) {
	if !FileExists(outputPath) {
		return "", nil
	}

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, uniqueFileName(outputPath))
	if err := copyFile(outputPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output file: %w", err)
	}

	return archivePath, nil
}

// uniqueFileName builds "<stem>_<timestamp>_<short-uuid><ext>" so repeated
// runs within the same second never collide.
func uniqueFileName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	timestamp := time.Now().Format("20060102_150405")
	shortID := uuid.New().String()[:8]

	return fmt.Sprintf("%s_%s_%s%s", stem, timestamp, shortID, ext)
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
