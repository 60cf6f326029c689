// Package pager reads raw SQLite pages and the values embedded in them:
// fixed-width big-endian integers, varints, and whole pages by number.
package pager

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the kind of failure, independent of where it
// occurred. Callers match on these with errors.Is through DatabaseError.Unwrap.
var (
	ErrInvalidDatabase    = errors.New("invalid database file")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrInvalidCellPointer = errors.New("invalid cell pointer")
	ErrInvalidVarint      = errors.New("invalid varint")
	ErrCorruptPage        = errors.New("corrupt or unrecognized page")
	ErrMalformedSQL       = errors.New("malformed SQL")
)

// DatabaseError wraps a sentinel error with the operation that produced it
// and a loosely-typed context bag, so callers printing diagnostics (or
// tests asserting on behavior) have something richer than a bare string.
type DatabaseError struct {
	Operation string
	Err       error
	Context   map[string]interface{}
}

func (e *DatabaseError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %v %v", e.Operation, e.Err, e.Context)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabaseError constructs a DatabaseError, copying the supplied context
// so later mutation by the caller can't retroactively change a reported error.
func NewDatabaseError(operation string, err error, context map[string]interface{}) *DatabaseError {
	ctx := make(map[string]interface{}, len(context))
	for k, v := range context {
		ctx[k] = v
	}
	return &DatabaseError{Operation: operation, Err: err, Context: ctx}
}
