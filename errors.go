package sheetsdb

import (
	"errors"
	"fmt"
)

// Error kinds. All errors returned by the registry, the table accessor and
// the SDK facade can be matched against these with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrSetupRequired  = errors.New("no meta spreadsheet configured")
	ErrTimeout        = errors.New("timeout")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// NotFoundError identifies the table (or spreadsheet) that could not be
// resolved. Callers must surface this as a configuration error, not create
// the table implicitly.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such table '%s'", e.Table)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError is returned when a table name is registered twice, or when a
// matched row was mutated by a concurrent writer between match and mutate.
type ConflictError struct {
	Table  string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on table '%s': %s", e.Table, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// SchemaMismatchError reports a data row whose column count disagrees with
// the table header. Row is the 0-based data row position.
type SchemaMismatchError struct {
	Table string
	Row   int
	Want  int
	Got   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table '%s' row %d has %d columns, header has %d", e.Table, e.Row, e.Got, e.Want)
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
