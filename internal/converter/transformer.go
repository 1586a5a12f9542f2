// =============================================================================
// Invoice Report Automation - Field Transformations
// =============================================================================
//
// This module holds the per-field rules applied by Normalize. Each function
// takes one cell value and returns the normalized value; none of them look at
// other rows.
//
// TRANSFORMATION TYPES:
//   - Status:  upper case
//   - Client:  title case (first letter of each word upper, rest lower)
//   - Amount:  rounded to 2 places, half away from zero, fixed 2-digit text
//   - DaysOld: whole days between the issue date and the processing time
//
// ROUNDING POLICY:
//   Amounts are rounded on their exact decimal text, never through a binary
//   float, so "100.005" always becomes "100.01" and "2.675" becomes "2.68".
//   Halves round away from zero: "-1.005" becomes "-1.01".
//
// =============================================================================

package converter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AmountPlaces is the number of fractional digits kept on amounts.
const AmountPlaces = 2

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies the field rules. It is not safe for concurrent use
// because the title caser keeps state between calls.
type Transformer struct {
	title cases.Caser
}

// NewTransformer creates a new Transformer.
func NewTransformer() *Transformer {
	return &Transformer{
		title: cases.Title(language.Und),
	}
}

// Status upper-cases a status value. Any text is accepted.
func (t *Transformer) Status(value string) string {
	return strings.ToUpper(value)
}

// Client title-cases a client name.
func (t *Transformer) Client(value string) string {
	return t.title.String(value)
}

// =============================================================================
// NUMERIC FORMATTING
// =============================================================================

// RoundAmount rounds half away from zero to AmountPlaces.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// FormatAmount renders an amount with exactly AmountPlaces digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountPlaces)
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

const day = 24 * time.Hour

// DaysOld returns floor((now - issued) / 24h) measured on the wall clock,
// so a DST change between the two times does not shift the count. The
// result is negative for dates after now.
func DaysOld(issued, now time.Time) int {
	d := wallClock(now).Sub(wallClock(issued))
	days := d / day
	if d%day != 0 && d < 0 {
		days--
	}
	return int(days)
}

// wallClock returns t's calendar date and clock reading as a UTC time.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
