package bindings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/bindings"
)

var _ bindings.Bindings = (*bindingsRepo)(nil)

type bindingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *bindingsRepo {
	return &bindingsRepo{db: db}
}

func (r *bindingsRepo) GetByAccount(ctx context.Context, q pgutils.Querier, accountID uint64) (bindings.Binding, error) {
	b := bindings.Binding{AccountID: accountID}

	err := q.QueryRowContext(ctx, `
		SELECT external_subject_id, display_name
		FROM bindings
		WHERE account_id = $1
	`, accountID).Scan(&b.ExternalSubjectID, &b.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bindings.Binding{}, bindings.ErrBindingNotFound
		}

		return bindings.Binding{}, fmt.Errorf("get binding: %w", err)
	}

	return b, nil
}

func (r *bindingsRepo) Insert(ctx context.Context, tx *sql.Tx, b bindings.Binding) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bindings (account_id, external_subject_id, display_name)
		VALUES ($1, $2, $3)
	`, b.AccountID, b.ExternalSubjectID, b.DisplayName)
	if err != nil {
		switch {
		case pgutils.IsUniqueViolation(err) && pgutils.ConstraintName(err) == "bindings_account_id_key":
			return bindings.ErrAccountLinked
		case pgutils.IsUniqueViolation(err):
			return bindings.ErrSubjectLinked
		case pgutils.IsForeignKeyViolation(err):
			return bindings.ErrUnknownAccount
		}

		return fmt.Errorf("insert binding: %w", err)
	}

	return nil
}
