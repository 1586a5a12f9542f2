// =============================================================================
// Invoice Report Automation - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicer)
//   ├── processCmd (invoicer process)
//   ├── reportCmd  (invoicer report)
//   ├── notifyCmd  (invoicer notify)
//   ├── sampleCmd  (invoicer sample)
//   ├── historyCmd (invoicer history)
//   └── versionCmd (invoicer version)
//
// CONFIGURATION:
//   The root command owns the --config and --verbose flags. Commands call
//   loadConfig and newLogger rather than reading the flags themselves.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when --config is not given. Unlike an explicit
// --config, it may be absent.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoice Report Automation - normalize invoices and email a summary report",
	Long: `Invoice Report Automation reads an invoice spreadsheet, normalizes it,
writes a processed copy, builds a two-sheet summary report and optionally
emails the report.

Pipeline:
  1. Load data/invoice_data.xlsx (or the configured input)
  2. Normalize status, amount and client; add DaysOld
  3. Write data/processed_invoice_data.xlsx
  4. Write data/report.xlsx with "Invoice Data" and "Summary" sheets
  5. Email the report (when email.enabled is true)

Example Usage:
  invoicer sample                       # Create sample input data
  invoicer process --no-email           # Run the pipeline without email
  invoicer process --config ./prod.yaml # Use a custom configuration file
  invoicer history --limit 5            # Show the last five runs`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main(). An interrupt cancels
// the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration file named by --config. A missing
// default config.yaml falls back to environment variables and defaults.
// Overrides run before validation, so a flag can switch off a section
// whose settings are incomplete.
func loadConfig(cmd *cobra.Command, overrides ...func(*config.Config)) (*config.Config, error) {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Read(path)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindFileNotFound {
			return nil, fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger from the configuration and --verbose.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, File: cfg.Logging.File})
}
