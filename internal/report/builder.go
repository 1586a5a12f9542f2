// =============================================================================
// Invoice Report Automation - Report Builder
// =============================================================================
//
// This module computes the report aggregates and assembles the two sections
// of the report workbook:
//
//   | Sheet          | Content                                             |
//   |----------------|-----------------------------------------------------|
//   | Invoice Data   | the processed invoice table, unchanged              |
//   | Summary        | four lines: generation time, count, total, average  |
//
// Build does no I/O. Writing the sheets is the xlsxwriter's job.
//
// EMPTY TABLES:
//   A table with no rows is valid. The total and the average are both 0;
//   the average is never computed by dividing by zero.
//
// =============================================================================

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/internal/validation"
)

const opReport = "report"

// Sheet names and the Summary header.
const (
	SheetInvoiceData = "Invoice Data"
	SheetSummary     = "Summary"
	SummaryHeader    = "Summary"
)

// TimestampLayout formats the generation time line.
const TimestampLayout = "2006-01-02 15:04:05"

// =============================================================================
// ARTIFACT
// =============================================================================

// Stats are the computed aggregates.
type Stats struct {
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
}

// Artifact is the in-memory report before it is written.
type Artifact struct {
	// GeneratedAt is the time passed to Build.
	GeneratedAt time.Time

	// Data is the Invoice Data section.
	Data types.Table

	// Summary holds exactly four human-readable lines.
	Summary []string

	// Stats are the numbers behind the Summary lines.
	Stats Stats
}

// SummaryTable returns the Summary section as a single-column table.
func (a *Artifact) SummaryTable() types.Table {
	tbl := types.NewTable(SummaryHeader)
	for _, line := range a.Summary {
		tbl.AppendRow(line)
	}
	return tbl
}

// Sheets returns both sections in workbook order.
func (a *Artifact) Sheets() []types.Sheet {
	return []types.Sheet{
		{Name: SheetInvoiceData, Table: a.Data},
		{Name: SheetSummary, Table: a.SummaryTable()},
	}
}

// =============================================================================
// BUILD
// =============================================================================

// Build computes the aggregates over the Amount column and assembles the
// report.
//
// RETURNS:
//   - The report artifact.
//   - A KindMissingColumn error if there is no Amount column, or a
//     KindProcessing error if an amount is not numeric.
func Build(table types.Table, now time.Time) (*Artifact, error) {
	if err := validation.RequireColumns(opReport, table, types.ColumnAmount); err != nil {
		return nil, err
	}

	stats, err := Compute(table)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		GeneratedAt: now,
		Data:        table,
		Summary:     SummaryLines(stats, now),
		Stats:       stats,
	}, nil
}

// Compute sums the Amount column. The average of an empty table is 0.
func Compute(table types.Table) (Stats, error) {
	idx := table.ColumnIndex(types.ColumnAmount)
	if idx < 0 {
		return Stats{}, apperrors.Newf(apperrors.KindMissingColumn, opReport,
			"required column(s) not found: %s", types.ColumnAmount)
	}

	total := decimal.Zero
	for i, row := range table.Rows {
		amount, err := validation.ParseAmount(row[idx])
		if err != nil {
			return Stats{}, apperrors.CellError(apperrors.KindProcessing, opReport,
				i+1, types.ColumnAmount, row[idx], err)
		}
		total = total.Add(amount)
	}

	stats := Stats{Count: table.Len(), Total: total, Average: decimal.Zero}
	if stats.Count > 0 {
		stats.Average = total.Div(decimal.NewFromInt(int64(stats.Count)))
	}
	return stats, nil
}

// SummaryLines renders the four Summary lines in their fixed order.
func SummaryLines(stats Stats, now time.Time) []string {
	return []string{
		"Report Generated: " + now.Format(TimestampLayout),
		fmt.Sprintf("Total Invoices: %d", stats.Count),
		"Total Amount: " + FormatCurrency(stats.Total),
		"Average Amount: " + FormatCurrency(stats.Average),
	}
}

// FormatCurrency renders a dollar amount with thousands separators and two
// decimals, e.g. "$1,417.17" or "-$5.00". The digits come straight from the
// decimal value, so any magnitude is rendered exactly.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
