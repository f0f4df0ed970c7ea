package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	pgmovements "github.com/fastprodman/gamebridge/internal/repos/movements/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/wallets"
	pgwallets "github.com/fastprodman/gamebridge/internal/repos/wallets/postgres"
)

const maxMovementsPage = 200

// Ledger owns wallet balances. Every balance change is paired with exactly
// one movement row written in the same transaction.
type Ledger struct {
	db        *sql.DB
	wallets   wallets.Wallets
	movements movements.Movements
	timeout   time.Duration
}

func New(dbx *sql.DB, timeout time.Duration) *Ledger {
	return &Ledger{
		db:        dbx,
		wallets:   pgwallets.New(dbx),
		movements: pgmovements.New(dbx),
		timeout:   timeout,
	}
}

// Wallets exposes the wallet repository to services composing their own transactions.
func (l *Ledger) Wallets() wallets.Wallets { return l.wallets }

// GetBalance returns the account's balance (no locks).
func (l *Ledger) GetBalance(ctx context.Context, accountID uint64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	balance, err := l.wallets.GetBalance(ctx, accountID)
	if err != nil {
		return 0, pgutils.Classify(fmt.Errorf("get balance: %w", err))
	}

	return balance, nil
}

// Debit removes amount from the account in its own transaction.
func (l *Ledger) Debit(ctx context.Context, accountID uint64, amount int64, reason movements.Reason, note string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var balance int64

	err := pgutils.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		var err error

		balance, err = l.DebitTx(ctx, tx, accountID, amount, reason, note)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}

	return balance, nil
}

// Credit adds amount to the account in its own transaction.
func (l *Ledger) Credit(ctx context.Context, accountID uint64, amount int64, reason movements.Reason, note string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var balance int64

	err := pgutils.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		var err error

		balance, err = l.CreditTx(ctx, tx, accountID, amount, reason, note)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}

	return balance, nil
}

// DebitTx runs the debit inside tx:
//
// 1) Lock the wallet row (FOR UPDATE).
// 2) Reject with InsufficientFundsError if amount exceeds the locked balance.
// 3) Decrease the balance and append the movement.
func (l *Ledger) DebitTx(
	ctx context.Context, tx *sql.Tx, accountID uint64, amount int64, reason movements.Reason, note string,
) (int64, error) {
	if amount < 0 {
		return 0, apperr.Invalid("debit amount must not be negative")
	}

	balance, err := l.wallets.LockAndGetBalance(ctx, tx, accountID)
	if err != nil {
		return 0, fmt.Errorf("lock and get balance: %w", err)
	}

	if amount == 0 {
		return balance, nil
	}

	if balance < amount {
		return 0, &apperr.InsufficientFundsError{Need: amount, Have: balance}
	}

	balance, err = l.wallets.DecreaseBalance(ctx, tx, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	err = l.movements.Insert(ctx, tx, movements.Movement{
		AccountID: accountID,
		Delta:     -amount,
		Reason:    reason,
		Note:      note,
	})
	if err != nil {
		return 0, fmt.Errorf("record movement: %w", err)
	}

	return balance, nil
}

// CreditTx runs the credit inside tx. The wallet row lock is taken by the UPDATE.
func (l *Ledger) CreditTx(
	ctx context.Context, tx *sql.Tx, accountID uint64, amount int64, reason movements.Reason, note string,
) (int64, error) {
	if amount < 0 {
		return 0, apperr.Invalid("credit amount must not be negative")
	}

	if amount == 0 {
		balance, err := l.wallets.LockAndGetBalance(ctx, tx, accountID)
		if err != nil {
			return 0, fmt.Errorf("lock and get balance: %w", err)
		}

		return balance, nil
	}

	balance, err := l.wallets.IncreaseBalance(ctx, tx, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("increase balance: %w", err)
	}

	err = l.movements.Insert(ctx, tx, movements.Movement{
		AccountID: accountID,
		Delta:     amount,
		Reason:    reason,
		Note:      note,
	})
	if err != nil {
		return 0, fmt.Errorf("record movement: %w", err)
	}

	return balance, nil
}

// Adjust applies a signed manual correction with reason ADMIN_ADJUST.
func (l *Ledger) Adjust(ctx context.Context, accountID uint64, delta int64, note string) (int64, error) {
	switch {
	case delta > 0:
		return l.Credit(ctx, accountID, delta, movements.ReasonAdminAdjust, note)
	case delta < 0:
		return l.Debit(ctx, accountID, -delta, movements.ReasonAdminAdjust, note)
	default:
		return 0, apperr.Invalid("adjustment delta must not be zero")
	}
}

// Movements lists the newest movements of an account.
func (l *Ledger) Movements(ctx context.Context, accountID uint64, limit int) ([]movements.Movement, error) {
	if limit <= 0 || limit > maxMovementsPage {
		limit = maxMovementsPage
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	_, err := l.wallets.GetBalance(ctx, accountID)
	if err != nil {
		return nil, pgutils.Classify(fmt.Errorf("check wallet: %w", err))
	}

	list, err := l.movements.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, pgutils.Classify(fmt.Errorf("list movements: %w", err))
	}

	return list, nil
}

// Audit is the result of comparing a wallet with its movement log.
type Audit struct {
	Balance     int64
	MovementSum int64
}

// Consistent reports whether the balance equals the sum of its movements.
func (a Audit) Consistent() bool { return a.Balance == a.MovementSum }

// Audit compares the balance with the movement sum. The wallet row is locked
// for the read so no movement can land in between.
func (l *Ledger) Audit(ctx context.Context, accountID uint64) (Audit, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var a Audit

	err := pgutils.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		var err error

		a.Balance, err = l.wallets.LockAndGetBalance(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		a.MovementSum, err = l.movements.SumDeltas(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("sum movements: %w", err)
		}

		return nil
	})
	if err != nil {
		return Audit{}, fmt.Errorf("audit: %w", err)
	}

	return a, nil
}
