package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/wallets"
)

func (r *walletsRepo) GetBalance(ctx context.Context, accountID uint64) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM wallets
		WHERE account_id = $1
	`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, wallets.ErrWalletNotFound
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
