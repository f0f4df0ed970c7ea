// Package apperr defines the error kinds shared by services, repositories and
// the HTTP layer. Specific sentinels elsewhere wrap one of these kinds so that
// callers can branch on either.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	// ErrTransient means the store was unavailable or timed out. Safe to retry.
	ErrTransient = errors.New("transient store failure")
	// ErrInvariant is returned when a step that must not fail did; the enclosing
	// transaction has been rolled back.
	ErrInvariant = errors.New("invariant violated")
)

// InsufficientFundsError carries the amounts involved in a rejected debit.
type InsufficientFundsError struct {
	Need int64
	Have int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, have %d", e.Need, e.Have)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Invalid returns an InvalidInput error with a message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Invariant wraps err as an invariant violation.
func Invariant(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvariant, step, err)
}

// KindOf names the kind of err for logs and metric labels.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	default:
		return "internal"
	}
}
