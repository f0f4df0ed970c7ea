package wallets

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/apperr"
)

var (
	ErrWalletNotFound    = fmt.Errorf("wallet %w", apperr.ErrNotFound)
	ErrInsufficientFunds = apperr.ErrInsufficientFunds
)

// Wallets stores one balance row per account. Mutations run inside a caller
// supplied transaction that already holds the row lock.
type Wallets interface {
	Create(ctx context.Context, tx *sql.Tx, accountID uint64) error
	Exists(ctx context.Context, tx *sql.Tx, accountID uint64) error
	GetBalance(ctx context.Context, accountID uint64) (int64, error)
	LockAndGetBalance(ctx context.Context, tx *sql.Tx, accountID uint64) (int64, error)
	IncreaseBalance(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64) (int64, error)
	DecreaseBalance(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64) (int64, error)
}
