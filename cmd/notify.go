// =============================================================================
// Invoice Report Automation - Notify Command
// =============================================================================
//
// This file defines the 'notify' command, which emails an existing report.
// It is useful to retry a notification that failed during 'process'.
//
// COMMAND USAGE:
//   invoicer notify [--file FILE]
//
// The email block of the configuration must be complete. email.enabled is
// not required for this command.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/notifier"
)

var notifyFile string

// notifyCmd represents the 'notify' command.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Email a report file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Email.Validate(); err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		file := cfg.Paths.Report
		if notifyFile != "" {
			file = notifyFile
		}

		res, err := notifier.New(cfg.Email, notifier.WithLogger(log)).Send(cmd.Context(), file)
		if err != nil {
			return fmt.Errorf("failed to send report: %w", err)
		}

		if res.Attached {
			fmt.Printf("  ✓ %s sent to %s\n", file, res.Recipient)
		} else {
			fmt.Printf("  ✓ email sent to %s without attachment (%s not found)\n", res.Recipient, file)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().StringVar(&notifyFile, "file", "", "Report to attach (default paths.report)")
}
