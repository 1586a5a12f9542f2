// =============================================================================
// Invoice Report Automation - History Command
// =============================================================================
//
// This file defines the 'history' command, which lists recent pipeline runs
// from the SQLite ledger configured by history.db_path.
//
// COMMAND USAGE:
//   invoicer history [--limit N]
//
// OUTPUT:
//   STARTED              STATUS   STAGE      RECORDS  TOTAL        EMAIL  DURATION
//   2025-02-01 09:30:00  success             3        $4,251.50    yes    1.2s
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-report-automation/internal/history"
	"github.com/ginjaninja78/invoice-report-automation/internal/report"
)

var historyLimit int

// historyColumns are the table headings and their display widths.
var historyColumns = []struct {
	title string
	width int
}{
	{"STARTED", 19},
	{"STATUS", 7},
	{"STAGE", 15},
	{"RECORDS", 7},
	{"TOTAL", 16},
	{"EMAIL", 5},
	{"DURATION", 10},
	{"ERROR", 40},
}

// historyCmd represents the 'history' command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.History.DBPath == "" {
			return errors.New("run history is disabled: set history.db_path")
		}

		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		printHistory(os.Stdout, runs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultListLimit, "Number of runs to show")
}

// printHistory writes runs as a fixed-width table.
func printHistory(w io.Writer, runs []history.Run) {
	titles := make([]string, len(historyColumns))
	for i, c := range historyColumns {
		titles[i] = c.title
	}
	writeHistoryRow(w, titles)

	for _, r := range runs {
		email := "no"
		if r.EmailSent {
			email = "yes"
		}
		writeHistoryRow(w, []string{
			r.StartedAt.Local().Format(report.TimestampLayout),
			r.Status,
			r.Stage,
			fmt.Sprint(r.Records),
			report.FormatCurrency(r.TotalAmount),
			email,
			r.Duration().Round(time.Millisecond).String(),
			strings.ReplaceAll(r.Error, "\n", " "),
		})
	}
}

// writeHistoryRow pads or truncates each cell to its column width in
// terminal cells. The last column is not padded.
func writeHistoryRow(w io.Writer, cells []string) {
	parts := make([]string, len(cells))
	last := len(cells) - 1
	for i, cell := range cells {
		width := historyColumns[i].width
		cell = runewidth.Truncate(cell, width, "…")
		if i == last {
			parts[i] = cell
			continue
		}
		parts[i] = runewidth.FillRight(cell, width)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
