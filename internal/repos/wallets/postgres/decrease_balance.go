package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/wallets"
)

// DecreaseBalance refuses to go below zero: no row is updated and
// ErrInsufficientFunds is returned instead.
func (r *walletsRepo) DecreaseBalance(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE wallets
		SET balance = balance - $2, updated_at = now()
		WHERE account_id = $1
		  AND balance >= $2
		RETURNING balance
	`, accountID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, wallets.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	return balance, nil
}
