package wallets

import (
	"context"
	"database/sql"
	"fmt"
)

func (r *walletsRepo) Create(ctx context.Context, tx *sql.Tx, accountID uint64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (account_id, balance)
		VALUES ($1, 0)
	`, accountID)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	return nil
}
