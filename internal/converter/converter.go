// =============================================================================
// Invoice Report Automation - Normalizer
// =============================================================================
//
// This module contains the core data normalization step. Given a loaded
// invoice table and the processing time, it returns a new table with
// normalized Status, Client and Amount values and a derived DaysOld column.
//
// CONTRACT:
//   - Input must have the Client, Amount, Status and Date columns.
//   - Rows are transformed independently; row count and order are kept.
//   - The input table is never modified.
//   - The first bad cell fails the whole call. There is no row skipping.
//
// DETERMINISM:
//   DaysOld depends on the now argument only, never on the wall clock, so
//   the same input and the same now always give the same output.
//
// =============================================================================

package converter

import (
	"strconv"
	"time"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/internal/validation"
)

const opNormalize = "normalize"

// RequiredColumns are the columns Normalize reads.
var RequiredColumns = []string{
	types.ColumnClient,
	types.ColumnAmount,
	types.ColumnStatus,
	types.ColumnDate,
}

// Normalize returns a normalized copy of table.
//
// PARAMETERS:
//   - table: the loaded invoice table.
//   - now: the processing time DaysOld is measured against. Dates without a
//     zone are read in now's location.
//
// RETURNS:
//   - A new table with the input columns plus DaysOld (appended last, or
//     replaced in place when the input already has it).
//   - A KindMissingColumn error if a required column is absent, a
//     KindInvalidDate error for an unparseable date, or a KindProcessing
//     error for a non-numeric amount.
func Normalize(table types.Table, now time.Time) (types.Table, error) {
	if err := validation.RequireColumns(opNormalize, table, RequiredColumns...); err != nil {
		return types.Table{}, err
	}

	clientIdx := table.ColumnIndex(types.ColumnClient)
	amountIdx := table.ColumnIndex(types.ColumnAmount)
	statusIdx := table.ColumnIndex(types.ColumnStatus)
	dateIdx := table.ColumnIndex(types.ColumnDate)

	out := table.Clone()
	daysIdx := out.ColumnIndex(types.ColumnDaysOld)
	if daysIdx < 0 {
		out.Columns = append(out.Columns, types.ColumnDaysOld)
		daysIdx = len(out.Columns) - 1
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], "")
		}
	}

	tr := NewTransformer()
	loc := now.Location()

	for i, row := range out.Rows {
		rowNum := i + 1

		amount, err := validation.ParseAmount(row[amountIdx])
		if err != nil {
			return types.Table{}, apperrors.CellError(apperrors.KindProcessing, opNormalize,
				rowNum, types.ColumnAmount, row[amountIdx], err)
		}

		issued, err := validation.ParseDate(row[dateIdx], loc)
		if err != nil {
			return types.Table{}, apperrors.CellError(apperrors.KindInvalidDate, opNormalize,
				rowNum, types.ColumnDate, row[dateIdx], err)
		}

		row[statusIdx] = tr.Status(row[statusIdx])
		row[amountIdx] = FormatAmount(RoundAmount(amount))
		row[clientIdx] = tr.Client(row[clientIdx])
		row[daysIdx] = strconv.Itoa(DaysOld(issued, now))
	}

	return out, nil
}
