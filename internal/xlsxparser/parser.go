// =============================================================================
// Invoice Report Automation - Table Loader
// =============================================================================
//
// This module reads the invoice spreadsheet into a types.Table. Row 1 of
// the sheet is the header row; every following row with at least one
// non-empty cell is a data row.
//
// SUPPORTED FORMATS:
//
//   | Extension           | Reader                                        |
//   |---------------------|-----------------------------------------------|
//   | .xlsx .xlsm .xltx   | excelize, raw cell values                     |
//   | .csv                | internal/csvparser                            |
//
// RAW CELL VALUES:
//   Cells are read without applying number formats. An amount stored as
//   100.005 is returned as "100.005" even when the cell is formatted to two
//   decimals, and a real date cell is returned as its serial day number.
//   Both are handled by the validation package.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-report-automation/internal/csvparser"
	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
)

const opLoad = "xlsxparser.Load"

// LoadOptions selects what part of the workbook to read.
type LoadOptions struct {
	// Sheet is the sheet to read. Empty means the first sheet.
	Sheet string

	// CSV controls how .csv input is split. Ignored for workbooks.
	CSV csvparser.Settings
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads the input file into a table.
//
// PARAMETERS:
//   - path: The .xlsx or .csv file to read.
//   - opts: Sheet selection for workbooks, reader settings for CSV files.
//
// RETURNS:
//   - The table. Header order is preserved as read.
//   - A KindFileNotFound error if the file does not exist, a
//     KindMissingColumn error if there is no header row, or a KindIO error
//     if the file cannot be opened or read.
func Load(path string, opts LoadOptions) (types.Table, error) {
	if err := checkFile(path); err != nil {
		return types.Table{}, err
	}

	if isCSV(path) {
		return csvparser.ParseWithSettings(path, opts.CSV)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.Table{}, apperrors.New(apperrors.KindIO, opLoad,
			fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return types.Table{}, apperrors.Newf(apperrors.KindIO, opLoad,
				"workbook %s has no sheets", path)
		}
	}

	return readSheet(f, sheetName)
}

// LoadSheets reads every sheet of a workbook, in workbook order.
func LoadSheets(path string) ([]types.Sheet, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	if isCSV(path) {
		tbl, err := csvparser.Parse(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return []types.Sheet{{Name: name, Table: tbl}}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, opLoad,
			fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	var sheets []types.Sheet
	for _, sheetName := range f.GetSheetList() {
		tbl, err := readSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", sheetName, err)
		}
		sheets = append(sheets, types.Sheet{Name: sheetName, Table: tbl})
	}

	return sheets, nil
}

// readSheet converts one sheet of an open workbook into a table.
func readSheet(f *excelize.File, sheetName string) (types.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Table{}, apperrors.New(apperrors.KindIO, opLoad,
			fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err))
	}

	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return types.Table{}, apperrors.Newf(apperrors.KindMissingColumn, opLoad,
			"sheet '%s' has no header row", sheetName)
	}

	table := types.NewTable(cleanHeaders(rows[0])...)
	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		table.AppendRow(row...)
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// checkFile distinguishes a missing input from an unreadable one.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.New(apperrors.KindFileNotFound, opLoad, err)
		}
		return apperrors.New(apperrors.KindIO, opLoad, err)
	}
	if info.IsDir() {
		return apperrors.Newf(apperrors.KindIO, opLoad, "%s is a directory", path)
	}
	return nil
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// cleanHeaders trims whitespace from header names.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
