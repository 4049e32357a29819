package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets a record id that is not
// in the ledger.
var ErrNotFound = errors.New("record not found")

// ErrNotHydrated is returned when a mutation arrives before Load completed.
var ErrNotHydrated = errors.New("ledger not hydrated")

// ValidationError means caller-supplied input violated a precondition. It is
// always raised before any state mutation and never retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError means a local storage read or write failed. For writes
// the operation aborts with state unchanged; for the best-effort mirror path
// it is logged and swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// GenerationError means a user-initiated AI generation failed: transport,
// timeout, or schema rejection. It always surfaces; background degradations
// never produce one.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "ai generation: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

func validationErr(err error) error {
	return &ValidationError{Err: err}
}

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a local storage failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsGeneration reports whether err is an AI generation failure.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

func wrapOp(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
