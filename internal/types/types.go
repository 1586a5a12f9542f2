// =============================================================================
// Invoice Report Automation - Shared Types
// =============================================================================
//
// This package contains the table model shared by every stage of the
// pipeline. It has no dependencies on other internal packages so that the
// loader, converter, report builder and writer can all import it without
// import cycles.
//
// TABLE MODEL:
//   A Table is an ordered list of column names plus an ordered list of rows.
//   Every row has exactly len(Columns) cells. Cells are kept as strings so
//   columns the pipeline does not know about pass through untouched.
//
// =============================================================================

package types

import "strings"

// =============================================================================
// COLUMN NAMES
// =============================================================================
// These are the header names expected in the input spreadsheet. Header order
// is not significant; columns are always looked up by name.

const (
	ColumnInvoiceID = "InvoiceID"
	ColumnClient    = "Client"
	ColumnAmount    = "Amount"
	ColumnStatus    = "Status"
	ColumnDate      = "Date"

	// ColumnDaysOld is derived by the converter and appended to the table.
	ColumnDaysOld = "DaysOld"
)

// InputColumns is the column order of a freshly created invoice table.
var InputColumns = []string{
	ColumnInvoiceID,
	ColumnClient,
	ColumnAmount,
	ColumnStatus,
	ColumnDate,
}

// IsNumericColumn reports whether cells of the column should be written to a
// spreadsheet as numbers rather than text.
func IsNumericColumn(name string) bool {
	switch name {
	case ColumnAmount, ColumnDaysOld:
		return true
	}
	return false
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered collection of rows with named columns.
type Table struct {
	// Columns holds the header names in file order.
	Columns []string

	// Rows holds the data rows. Each row is padded to len(Columns).
	Rows [][]string
}

// NewTable creates a table with a copy of the given columns and no rows.
func NewTable(columns ...string) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Columns: cols, Rows: [][]string{}}
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
// Surrounding whitespace in header names is ignored.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has the named column.
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Column returns all values of the named column in row order.
// It returns nil if the column does not exist.
func (t Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// =============================================================================
// SHEET
// =============================================================================

// Sheet is a table with a sheet name, used for multi-sheet workbooks.
type Sheet struct {
	Name  string
	Table Table
}
