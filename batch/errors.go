package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when an empty or nil batch is submitted.
	ErrEmptyBatch = errors.New("writeset: batch is empty")

	// ErrDuplicateKey is returned when two operations in a batch target the
	// same primary key.
	ErrDuplicateKey = errors.New("writeset: duplicate primary key in batch")

	// ErrCrossShard is returned when a batch's keys resolve to more than one
	// partition affinity group.
	ErrCrossShard = errors.New("writeset: batch spans partition affinity groups")

	// ErrIncompatibleTables is returned when a multi-table batch references
	// tables not declared batch-compatible.
	ErrIncompatibleTables = errors.New("writeset: tables are not declared batch-compatible")

	// ErrNilMatchVersion is returned when a version-conditional operation
	// carries no match version.
	ErrNilMatchVersion = errors.New("writeset: conditional operation requires a match version")

	// ErrNegativeTTL is returned when an explicit TTL duration is negative.
	ErrNegativeTTL = errors.New("writeset: TTL duration must be non-negative")

	// ErrInvalidDurability is returned when a durability policy is outside
	// the known enumeration.
	ErrInvalidDurability = errors.New("writeset: invalid durability policy")

	// ErrTableNotFound is returned when the target table does not exist.
	ErrTableNotFound = errors.New("writeset: table not found")

	// ErrNotFound is returned by Get when no live row exists for the key.
	ErrNotFound = errors.New("writeset: row not found")

	// ErrTableMismatch is returned when a single-table batch contains an
	// operation targeting a different table.
	ErrTableMismatch = errors.New("writeset: operation targets a different table than the batch")
)

var (
	errMissingRow  = errors.New("writeset: put operation requires a row")
	errMissingKey  = errors.New("writeset: delete operation requires a primary key")
	errUnknownKind = errors.New("writeset: unknown operation kind")
)

// BatchSizeError reports that a batch exceeds the operation-count ceiling.
// It is distinct from generic validation failures so callers can split
// oversized batches instead of treating them as malformed.
type BatchSizeError struct {
	Count int
	Max   int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("writeset: batch has %d operations, limit is %d", e.Count, e.Max)
}

// ValidationError reports a pre-flight validation failure. Index is the
// position of the offending operation, or -1 for batch-level failures.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("operation %d: %s", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IndeterminateError reports a transport or timeout failure after a batch was
// submitted. Whether the batch applied is unknown; the caller must re-read
// affected keys before retrying.
type IndeterminateError struct {
	Err error
}

func (e *IndeterminateError) Error() string {
	return fmt.Sprintf("writeset: batch outcome indeterminate: %s", e.Err)
}

func (e *IndeterminateError) Unwrap() error { return e.Err }
