package types

import "errors"

// Error taxonomy for the engagement core. Callers classify failures with
// errors.Is; everything else is an internal error.
var (
	// ErrNotFound: an entity referenced by id or lookup key is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed or missing required input, detected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: the operation contradicts current state, e.g. double-unassigning.
	ErrConflict = errors.New("conflict")
	// ErrCapability: an external capability (generation, channel delivery) failed.
	// Recoverable by caller retry; never retried internally.
	ErrCapability = errors.New("capability failure")
	// ErrLedger: a billing deduction failed after the response was already committed.
	ErrLedger = errors.New("ledger failure")
)
