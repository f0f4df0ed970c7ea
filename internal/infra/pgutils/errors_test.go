package pgutils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{name: "nil", err: nil, wantTransient: false},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantTransient: true},
		{name: "canceled", err: context.Canceled, wantTransient: true},
		{name: "connection_class", err: &pgconn.PgError{Code: "08006"}, wantTransient: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, wantTransient: true},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, wantTransient: true},
		{name: "unique_violation", err: &pgconn.PgError{Code: "23505"}, wantTransient: false},
		{name: "plain", err: errors.New("boom"), wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("want nil, got %v", got)
				}
				return
			}

			if errors.Is(got, apperr.ErrTransient) != tt.wantTransient {
				t.Fatalf("transient mismatch for %v: got %v", tt.err, got)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("cause lost: %v", got)
			}
		})
	}
}

func TestClassify_DoesNotDoubleWrap(t *testing.T) {
	t.Parallel()

	once := Classify(context.DeadlineExceeded)
	twice := Classify(once)

	if once.Error() != twice.Error() {
		t.Fatalf("double wrapped: %q vs %q", once, twice)
	}
}

func TestConstraintHelpers(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bindings_account_id_key"})

	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation")
	}
	if IsForeignKeyViolation(err) {
		t.Fatalf("unexpected fk violation")
	}
	if got := ConstraintName(err); got != "bindings_account_id_key" {
		t.Fatalf("constraint name: got %q", got)
	}
	if got := ConstraintName(errors.New("x")); got != "" {
		t.Fatalf("constraint name for plain error: got %q", got)
	}
}
