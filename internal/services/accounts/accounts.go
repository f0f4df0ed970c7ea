// Package accounts bootstraps accounts together with their wallet and streak rows.
package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/gamebridge/internal/repos/accounts/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	"github.com/fastprodman/gamebridge/internal/repos/streaks"
	pgstreaks "github.com/fastprodman/gamebridge/internal/repos/streaks/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/wallets"
)

type walletLedger interface {
	Wallets() wallets.Wallets
	CreditTx(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64, reason movements.Reason, note string) (int64, error)
}

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	streaks  streaks.Streaks
	ledger   walletLedger
	timeout  time.Duration
}

func New(dbx *sql.DB, l walletLedger, timeout time.Duration) *Service {
	return &Service{
		db:       dbx,
		accounts: pgaccounts.New(dbx),
		streaks:  pgstreaks.New(dbx),
		ledger:   l,
		timeout:  timeout,
	}
}

type Created struct {
	AccountID uint64 `json:"accountId"`
	Balance   int64  `json:"balance"`
}

// Create opens an account with an empty streak. A positive initialBalance is
// credited as an ADMIN_ADJUST movement so the ledger stays balanced.
func (s *Service) Create(ctx context.Context, initialBalance int64) (Created, error) {
	if initialBalance < 0 {
		return Created{}, apperr.Invalid("initial balance must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out Created

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := s.accounts.Create(ctx, tx)
		if err != nil {
			return err
		}

		err = s.ledger.Wallets().Create(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}

		err = s.streaks.Create(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("create streak: %w", err)
		}

		balance, err := s.ledger.CreditTx(ctx, tx, id, initialBalance, movements.ReasonAdminAdjust, "initial balance")
		if err != nil {
			return fmt.Errorf("initial credit: %w", err)
		}

		out = Created{AccountID: id, Balance: balance}

		return nil
	})
	if err != nil {
		return Created{}, fmt.Errorf("create account: %w", err)
	}

	slog.Info("account created", "account_id", out.AccountID, "balance", out.Balance)

	return out, nil
}
