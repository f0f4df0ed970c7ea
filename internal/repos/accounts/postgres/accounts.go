package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

func (r *accountsRepo) Create(ctx context.Context, tx *sql.Tx) (uint64, error) {
	var id uint64

	err := tx.QueryRowContext(ctx, `
		INSERT INTO accounts DEFAULT VALUES
		RETURNING id
	`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}

	return id, nil
}
