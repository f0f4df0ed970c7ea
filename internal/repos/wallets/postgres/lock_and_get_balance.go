package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/wallets"
)

// LockAndGetBalance takes the account-scoped row lock held until tx ends.
func (r *walletsRepo) LockAndGetBalance(ctx context.Context, tx *sql.Tx, accountID uint64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		SELECT balance
		FROM wallets
		WHERE account_id = $1
		FOR UPDATE
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, wallets.ErrWalletNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
