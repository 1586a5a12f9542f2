// =============================================================================
// Invoice Report Automation - Error Taxonomy
// =============================================================================
//
// Every failure the pipeline can report carries a Kind so callers can tell a
// missing column from an unreadable file from a rejected SMTP login without
// parsing messages.
//
// USAGE:
//   return apperrors.New(apperrors.KindInvalidDate, "normalize", err)
//
//   if errors.Is(err, apperrors.ErrInvalidDate) { ... }
//   kind := apperrors.KindOf(err)
//
// =============================================================================

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies an error.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors without a Kind.
	KindUnknown Kind = iota
	KindMissingColumn
	KindInvalidDate
	KindProcessing
	KindFileNotFound
	KindIO
	KindTransport
	KindAuth
	KindConfig
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindMissingColumn: "missing_column",
	KindInvalidDate:   "invalid_date",
	KindProcessing:    "processing",
	KindFileNotFound:  "file_not_found",
	KindIO:            "io",
	KindTransport:     "transport",
	KindAuth:          "auth",
	KindConfig:        "config",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// =============================================================================
// ERROR STRUCTURE
// =============================================================================

// Error is a classified pipeline error.
type Error struct {
	// Kind is the error category.
	Kind Kind

	// Op is the operation that failed, e.g. "normalize" or "load".
	Op string

	// Row is the 1-based data row (header excluded), or 0 if not row specific.
	Row int

	// Column is the column involved, if any.
	Column string

	// Value is the offending cell value, if any.
	Value string

	// Err is the underlying error, if any.
	Err error
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// CellError creates an Error pointing at a specific cell.
func CellError(kind Kind, op string, row int, column, value string, err error) *Error {
	return &Error{Kind: kind, Op: op, Row: row, Column: column, Value: value, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of Op, Row or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// =============================================================================
// SENTINELS
// =============================================================================

var (
	ErrMissingColumn = &Error{Kind: KindMissingColumn}
	ErrInvalidDate   = &Error{Kind: KindInvalidDate}
	ErrProcessing    = &Error{Kind: KindProcessing}
	ErrFileNotFound  = &Error{Kind: KindFileNotFound}
	ErrIO            = &Error{Kind: KindIO}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrAuth          = &Error{Kind: KindAuth}
	ErrConfig        = &Error{Kind: KindConfig}
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsDataError reports whether err was caused by the content of the input
// table rather than by I/O or configuration.
func IsDataError(err error) bool {
	switch KindOf(err) {
	case KindMissingColumn, KindInvalidDate, KindProcessing:
		return true
	}
	return false
}
