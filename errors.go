package sqlite

import (
	"errors"
	"fmt"

	"github.com/anyproto/go-sqlite/internal/driver"
)

// NativeError is a failure reported by the engine itself, carrying the
// primary result code, the extended result code and the message text.
type NativeError = driver.Error

var (
	ErrClosed      = driver.ErrClosed
	ErrBusy        = driver.ErrBusy
	ErrInterrupted = driver.ErrInterrupted

	ErrNoRows                 = errors.New("sqlite: query returned no rows")
	ErrExecuteReturnedResults = errors.New("sqlite: execute produced result rows")
	ErrMultipleStatements     = errors.New("sqlite: sql contains trailing statements")
	ErrNulByte                = errors.New("sqlite: string contains embedded NUL byte")
	ErrInvalidPath            = errors.New("sqlite: invalid database path")
	ErrConversion             = errors.New("sqlite: value conversion failed")

	ErrColumnIndex    = errors.New("sqlite: invalid column index")
	ErrColumnName     = errors.New("sqlite: invalid column name")
	ErrColumnType     = errors.New("sqlite: invalid column type")
	ErrParameterName  = errors.New("sqlite: invalid parameter name")
	ErrParameterIndex = errors.New("sqlite: parameter index out of range")

	ErrTxDone     = errors.New("sqlite: transaction has already been resolved")
	ErrRowInvalid = errors.New("sqlite: row is no longer valid")
)

var errNoStatement = errors.New("sqlite: sql contains no statement")

// ColumnIndexError reports a column access outside the result width.
type ColumnIndexError struct {
	Index int
	Count int
}

func (e *ColumnIndexError) Error() string {
	return fmt.Sprintf("sqlite: invalid column index %d (statement has %d columns)", e.Index, e.Count)
}

func (e *ColumnIndexError) Unwrap() error { return ErrColumnIndex }

// ColumnNameError reports a column name with no exact match in the result.
type ColumnNameError struct {
	Name string
}

func (e *ColumnNameError) Error() string {
	return fmt.Sprintf("sqlite: invalid column name %q", e.Name)
}

func (e *ColumnNameError) Unwrap() error { return ErrColumnName }

// ColumnTypeError reports a column whose runtime value tag cannot be
// converted to the requested type.
type ColumnTypeError struct {
	Index int
	Type  Type
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("sqlite: invalid type %s of column %d", e.Type, e.Index)
}

func (e *ColumnTypeError) Unwrap() error { return ErrColumnType }

// ParameterNameError reports a named parameter the statement does not declare.
type ParameterNameError struct {
	Name string
}

func (e *ParameterNameError) Error() string {
	return fmt.Sprintf("sqlite: invalid parameter name %q", e.Name)
}

func (e *ParameterNameError) Unwrap() error { return ErrParameterName }

// ParameterIndexError reports a positional bind outside the declared range.
type ParameterIndexError struct {
	Index int
	Count int
}

func (e *ParameterIndexError) Error() string {
	return fmt.Sprintf("sqlite: parameter index %d out of range (statement has %d parameters)", e.Index, e.Count)
}

func (e *ParameterIndexError) Unwrap() error { return ErrParameterIndex }

// ConversionError wraps a failure from a user-provided Binder or Scanner.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("sqlite: value conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() []error { return []error{ErrConversion, e.Err} }

// Optional converts an ErrNoRows failure into an absent value, passing every
// other error through unchanged:
//
//	v, ok, err := sqlite.Optional(sqlite.QueryRow(conn, sql, nil, mapper))
func Optional[T any](v T, err error) (T, bool, error) {
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			var zero T
			return zero, false, nil
		}
		var zero T
		return zero, false, err
	}
	return v, true, nil
}
