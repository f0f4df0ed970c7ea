package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientFundsError_MatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("debit: %w", &InsufficientFundsError{Need: 100, Have: 40})

	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ErrConflict)

	var ife *InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, int64(100), ife.Need)
	assert.Equal(t, int64(40), ife.Have)
	assert.Equal(t, "debit: insufficient funds: need 100, have 40", err.Error())
}

func TestInvariant_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Invariant("enqueue task", cause)

	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "enqueue task")
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	err := Invalid("quantity %d out of range", 65)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: quantity 65 out of range", err.Error())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{Invalid("bad"), "invalid_input"},
		{fmt.Errorf("wallet %w", ErrNotFound), "not_found"},
		{&InsufficientFundsError{Need: 2, Have: 1}, "insufficient_funds"},
		{fmt.Errorf("claimed: %w", ErrConflict), "conflict"},
		{fmt.Errorf("%w: timeout", ErrTransient), "transient"},
		{Invariant("enqueue", errors.New("x")), "invariant"},
		{ErrUnauthorized, "unauthorized"},
		{errors.New("other"), "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "err=%v", tt.err)
	}
}
