// =============================================================================
// Invoice Report Automation - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the whole invoice
// pipeline once.
//
// COMMAND USAGE:
//   invoicer process [flags]
//
// FLAGS:
//   --input       : Override paths.input
//   --processed   : Override paths.processed
//   --report      : Override paths.report
//   --no-email    : Skip the email step even if email.enabled is true
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Load the invoice spreadsheet
//   3. Normalize it and add DaysOld
//   4. Write the processed spreadsheet
//   5. Write the two-sheet report
//   6. Email the report
//   7. Archive the input, record history and metrics (when configured)
//
// EXIT STATUS:
//   Non-zero when any of steps 2 to 5 fails. A failed email is reported but
//   does not change the exit status.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	"github.com/ginjaninja78/invoice-report-automation/internal/pipeline"
	"github.com/ginjaninja78/invoice-report-automation/internal/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processInput     string
	processProcessed string
	processReport    string
	noEmail          bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize the invoice file, build the report and email it",
	Long: `The process command loads the invoice spreadsheet, normalizes every row,
writes the processed spreadsheet and the report, then emails the report when
email is enabled.

On success:
  - The processed spreadsheet and the report are written
  - The report is emailed (failures here are logged, not fatal)
  - The input is archived when paths.archive_dir is set

On error:
  - Processing stops at the failing step
  - No later files are written
  - The run is recorded in history as failed`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processInput, "input", "", "Path to the invoice file (.xlsx or .csv)")
	processCmd.Flags().StringVar(&processProcessed, "processed", "", "Path for the processed spreadsheet")
	processCmd.Flags().StringVar(&processReport, "report", "", "Path for the report")
	processCmd.Flags().BoolVar(&noEmail, "no-email", false, "Do not email the report")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Invoice Report Automation ===")
	fmt.Println("Loading configuration...")

	cfg, err := loadConfig(cmd, applyProcessFlags)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================

	fmt.Println("Processing invoices...")

	res := pipeline.New(cfg,
		pipeline.WithLogger(log),
		pipeline.WithProgress(printStep),
	).Run(cmd.Context())

	// =========================================================================
	// STEP 3: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Run ID:          %s\n", res.RunID)
	if res.Success {
		fmt.Printf("Invoices:        %d\n", res.Records)
		fmt.Printf("Total amount:    %s\n", report.FormatCurrency(res.Stats.Total))
		fmt.Printf("Average amount:  %s\n", report.FormatCurrency(res.Stats.Average))
		fmt.Printf("Email sent:      %t\n", res.EmailSent)
	}
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if !res.Success {
		return fmt.Errorf("pipeline failed at %s: %w", res.Stage, res.Err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyProcessFlags copies the command-line overrides into cfg.
func applyProcessFlags(cfg *config.Config) {
	if processInput != "" {
		cfg.Paths.Input = processInput
	}
	if processProcessed != "" {
		cfg.Paths.Processed = processProcessed
	}
	if processReport != "" {
		cfg.Paths.Report = processReport
	}
	if noEmail {
		cfg.Email.Enabled = false
	}
}

// printStep prints one progress line per pipeline step.
func printStep(s pipeline.Step) {
	if s.OK {
		fmt.Printf("  ✓ %-16s %s\n", s.Stage, s.Detail)
		return
	}
	fmt.Printf("  ✗ %-16s %v\n", s.Stage, s.Err)
}
