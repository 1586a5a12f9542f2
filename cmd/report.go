// =============================================================================
// Invoice Report Automation - Report Command
// =============================================================================
//
// This file defines the 'report' command, which rebuilds the report from an
// existing processed spreadsheet without touching the input.
//
// COMMAND USAGE:
//   invoicer report [--processed FILE] [--report FILE]
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/pipeline"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxparser"
)

var (
	reportProcessed string
	reportOutput    string
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the report from a processed spreadsheet",
	Long: `The report command reads the processed spreadsheet written by 'process'
and writes the two-sheet report ("Invoice Data" and "Summary") again.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		processedPath := cfg.Paths.Processed
		if reportProcessed != "" {
			processedPath = reportProcessed
		}
		reportPath := cfg.Paths.Report
		if reportOutput != "" {
			reportPath = reportOutput
		}

		processed, err := xlsxparser.Load(processedPath, xlsxparser.LoadOptions{})
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", processedPath, err)
		}

		artifact, err := pipeline.WriteReport(processed, reportPath, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", reportPath)
		for _, line := range artifact.Summary {
			fmt.Printf("  %s\n", line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportProcessed, "processed", "", "Processed spreadsheet to read (default paths.processed)")
	reportCmd.Flags().StringVar(&reportOutput, "report", "", "Report file to write (default paths.report)")
}
