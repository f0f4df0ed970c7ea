package pgutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Classify tags err with apperr.ErrTransient when it comes from an unavailable,
// overloaded or timed out store. Anything else is returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, apperr.ErrTransient) {
		return err
	}

	if isTransient(err) {
		return fmt.Errorf("%w: %w", apperr.ErrTransient, err)
	}

	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}

		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57014", // query_canceled
			"57P01": // admin_shutdown
			return true
		}
	}

	return false
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a Postgres foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// ConstraintName returns the violated constraint, or "" when err is not a PgError.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == code
}
