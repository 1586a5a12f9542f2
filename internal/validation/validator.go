// =============================================================================
// Invoice Report Automation - Validation
// =============================================================================
//
// This module checks that an invoice table has the columns a stage needs and
// parses the typed cell values (amounts and dates) the stages compute with.
//
// VALIDATION SCOPE:
//   - Column presence: every required header must exist (by name)
//   - Amount cells:    must be a decimal number
//   - Date cells:      must be an ISO date, a common date-time layout, or an
//                      Excel serial day number
//
//   No other schema rules are enforced; unknown columns are allowed and any
//   status text is accepted.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
)

// =============================================================================
// COLUMN CHECKS
// =============================================================================

// RequireColumns returns a KindMissingColumn error naming every column in
// names that the table does not have.
func RequireColumns(op string, table types.Table, names ...string) error {
	var missing []string
	for _, name := range names {
		if !table.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.Newf(apperrors.KindMissingColumn, op,
		"required column(s) not found: %s (have: %s)",
		strings.Join(missing, ", "), strings.Join(table.Columns, ", "))
}

// =============================================================================
// AMOUNT PARSING
// =============================================================================

// ErrEmptyValue is returned for blank cells.
var ErrEmptyValue = errors.New("value is empty")

// ParseAmount parses a monetary cell. Thousands separators and a leading
// currency symbol are tolerated ("$1,000.50").
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, ErrEmptyValue
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a decimal number")
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// =============================================================================
// DATE PARSING
// =============================================================================

// dateLayouts are tried in order. ISO-8601 dates come first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// excelSerialMin and excelSerialMax bound the serial day numbers accepted as
// dates (1900-01-01 to 9999-12-31).
const (
	excelSerialMin = 1
	excelSerialMax = 2958465
)

// ParseDate parses a date cell. Layouts without a zone are interpreted in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, ErrEmptyValue
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	// Spreadsheets store real date cells as serial day numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < excelSerialMin || serial > excelSerialMax {
			return time.Time{}, fmt.Errorf("serial date %s out of range", s)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("unrecognised date format, expected YYYY-MM-DD")
}
