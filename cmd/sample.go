// =============================================================================
// Invoice Report Automation - Sample Command
// =============================================================================
//
// This file defines the 'sample' command, which writes a small invoice
// spreadsheet so the pipeline can be tried without real data.
//
// COMMAND USAGE:
//   invoicer sample [--output FILE]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/pipeline"
)

var sampleOutput string

// sampleCmd represents the 'sample' command.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write sample invoice data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		output := cfg.Paths.Input
		if sampleOutput != "" {
			output = sampleOutput
		}

		if err := pipeline.WriteSample(output); err != nil {
			return err
		}

		fmt.Printf("Sample data written to %s (%d invoices)\n", output, pipeline.SampleTable().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "File to write (default paths.input)")
}
