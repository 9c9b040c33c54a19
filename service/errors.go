package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound means the referenced account does not exist.
	// The ledger never silently creates accounts.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRequestNotFound means the referenced transfer request does not exist
	ErrRequestNotFound = errors.New("transfer request not found")

	// ErrAlreadyProcessed means a decision was attempted on a request that
	// is no longer pending. Idempotency guard, not retryable.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrInsufficientBalance means a withdrawal or bet exceeded the
	// available balance; no debit was performed
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ValidationError reports malformed or out-of-range input. No state was
// changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// SecondaryEffectError reports a non-primary step that failed after the
// primary effect already committed. The operation as a whole succeeded;
// the failure is surfaced so callers can act on it instead of parsing logs.
type SecondaryEffectError struct {
	Step string
	Err  error
}

func (e *SecondaryEffectError) Error() string {
	return fmt.Sprintf("secondary effect %s failed: %v", e.Step, e.Err)
}

func (e *SecondaryEffectError) Unwrap() error {
	return e.Err
}
