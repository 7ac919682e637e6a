// =============================================================================
// B2B-WC Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the B2B-WC Converter CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   b2bwc process        - Convert the catalog into a WooCommerce import CSV
//   b2bwc validate       - Check the configuration and catalog without writing
//   b2bwc version        - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/kvanta42/b2b-wc-converter/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
