// =============================================================================
// Invoice Report Automation - Main Entry Point
// =============================================================================
//
// This is the main entry point for the invoicer CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   invoicer process       - Run the invoice pipeline once
//   invoicer report        - Rebuild the report from the processed file
//   invoicer notify        - Email an existing report
//   invoicer sample        - Write sample input data
//   invoicer history       - List recent runs
//   invoicer version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Pipeline stages, configuration, logging, storage
//   - pkg/utils/     : File and archive helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoice-report-automation/cmd"
)

func main() {
	cmd.Execute()
}
