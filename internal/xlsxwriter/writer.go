// =============================================================================
// Invoice Report Automation - Spreadsheet Writer
// =============================================================================
//
// This module writes one or more tables to an .xlsx workbook. It is used for
// both the processed invoice file (one sheet) and the report (two sheets).
//
// LAYOUT:
//   - Row 1 is the header row, in bold.
//   - Amount and DaysOld cells are written as numbers. Amount uses the
//     "0.00" number format. Cells that do not parse stay text.
//   - Column widths follow the widest cell in each column.
//   - The first sheet is the active sheet.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/pkg/utils"
)

const opWrite = "xlsxwriter.Write"

// DefaultSheetName is used by Write for single-table workbooks.
const DefaultSheetName = "Sheet1"

// Column width bounds, in characters.
const (
	minColumnWidth = 8
	maxColumnWidth = 60
)

// Built-in excelize number format 2 is "0.00".
const amountNumFmt = 2

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write saves a single table to path on a sheet named Sheet1.
func Write(path string, table types.Table) error {
	return WriteSheets(path, types.Sheet{Name: DefaultSheetName, Table: table})
}

// WriteSheets saves the given sheets to a new workbook at path, replacing
// any existing file.
//
// PARAMETERS:
//   - path: Destination .xlsx file. Parent directories are created.
//   - sheets: The sheets to write, in order. At least one is required.
//
// RETURNS:
//   - A KindIO error if the workbook cannot be built or saved.
func WriteSheets(path string, sheets ...types.Sheet) error {
	if len(sheets) == 0 {
		return apperrors.Newf(apperrors.KindIO, opWrite, "no sheets to write to %s", path)
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return apperrors.New(apperrors.KindIO, opWrite,
			fmt.Errorf("failed to create directory for %s: %w", path, err))
	}

	f := excelize.NewFile()
	defer f.Close()

	w, err := newSheetWriter(f)
	if err != nil {
		return apperrors.New(apperrors.KindIO, opWrite, err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(DefaultSheetName, sheet.Name); err != nil {
				return apperrors.New(apperrors.KindIO, opWrite,
					fmt.Errorf("failed to name sheet '%s': %w", sheet.Name, err))
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return apperrors.New(apperrors.KindIO, opWrite,
				fmt.Errorf("failed to add sheet '%s': %w", sheet.Name, err))
		}

		if err := w.writeTable(sheet.Name, sheet.Table); err != nil {
			return apperrors.New(apperrors.KindIO, opWrite,
				fmt.Errorf("failed to write sheet '%s': %w", sheet.Name, err))
		}
	}

	if idx, err := f.GetSheetIndex(sheets[0].Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.New(apperrors.KindIO, opWrite,
			fmt.Errorf("failed to save %s: %w", path, err))
	}

	return nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter holds the styles shared by every sheet of one workbook.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	amountStyle int
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}
	return &sheetWriter{f: f, headerStyle: headerStyle, amountStyle: amountStyle}, nil
}

// writeTable writes the header, the rows, the styles and the column widths.
func (w *sheetWriter) writeTable(sheet string, table types.Table) error {
	ncols := len(table.Columns)
	if ncols == 0 {
		return nil
	}

	header := make([]interface{}, ncols)
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range table.Rows {
		values := make([]interface{}, ncols)
		for c := 0; c < ncols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			values[c] = cellValue(table.Columns[c], cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, axis, &values); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", lastCol+"1", w.headerStyle); err != nil {
		return err
	}

	if idx := table.ColumnIndex(types.ColumnAmount); idx >= 0 && table.Len() > 0 {
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		bottom := fmt.Sprintf("%s%d", col, table.Len()+1)
		if err := w.f.SetCellStyle(sheet, col+"2", bottom, w.amountStyle); err != nil {
			return err
		}
	}

	for c, width := range columnWidths(table) {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	return nil
}

// cellValue converts a cell to the value excelize should store.
func cellValue(column, cell string) interface{} {
	if cell == "" || !types.IsNumericColumn(column) {
		return cell
	}
	switch column {
	case types.ColumnDaysOld:
		if n, err := strconv.Atoi(cell); err == nil {
			return n
		}
	default:
		if d, err := decimal.NewFromString(cell); err == nil {
			return d.InexactFloat64()
		}
	}
	return cell
}

// columnWidths returns the display width of the widest cell per column.
func columnWidths(table types.Table) []float64 {
	widths := make([]float64, len(table.Columns))
	measure := func(c int, s string) {
		w := float64(runewidth.StringWidth(s) + 2)
		if w > widths[c] {
			widths[c] = w
		}
	}

	for c, col := range table.Columns {
		measure(c, col)
	}
	for _, row := range table.Rows {
		for c := 0; c < len(widths) && c < len(row); c++ {
			measure(c, row[c])
		}
	}

	for c := range widths {
		switch {
		case widths[c] < minColumnWidth:
			widths[c] = minColumnWidth
		case widths[c] > maxColumnWidth:
			widths[c] = maxColumnWidth
		}
	}
	return widths
}
