package streaks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/streaks"
)

var _ streaks.Streaks = (*streaksRepo)(nil)

type streaksRepo struct{ db *sql.DB }

func New(db *sql.DB) *streaksRepo {
	return &streaksRepo{db: db}
}

func (r *streaksRepo) Create(ctx context.Context, tx *sql.Tx, accountID uint64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO streaks (account_id)
		VALUES ($1)
	`, accountID)
	if err != nil {
		return fmt.Errorf("create streak: %w", err)
	}

	return nil
}

func (r *streaksRepo) Get(ctx context.Context, q pgutils.Querier, accountID uint64) (streaks.Record, error) {
	return scanRecord(accountID, q.QueryRowContext(ctx, `
		SELECT last_claim_date, streak
		FROM streaks
		WHERE account_id = $1
	`, accountID))
}

func (r *streaksRepo) LockAndGet(ctx context.Context, tx *sql.Tx, accountID uint64) (streaks.Record, error) {
	return scanRecord(accountID, tx.QueryRowContext(ctx, `
		SELECT last_claim_date, streak
		FROM streaks
		WHERE account_id = $1
		FOR UPDATE
	`, accountID))
}

func (r *streaksRepo) Save(ctx context.Context, tx *sql.Tx, rec streaks.Record) error {
	var lastClaim sql.NullTime
	if rec.LastClaimDate != nil {
		lastClaim = sql.NullTime{Time: rec.LastClaimDate.UTC(), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE streaks
		SET last_claim_date = $2, streak = $3, updated_at = now()
		WHERE account_id = $1
	`, rec.AccountID, lastClaim, rec.Streak)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return streaks.ErrStreakNotFound
	}

	return nil
}

func scanRecord(accountID uint64, row *sql.Row) (streaks.Record, error) {
	var lastClaim sql.NullTime

	rec := streaks.Record{AccountID: accountID}

	err := row.Scan(&lastClaim, &rec.Streak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return streaks.Record{}, streaks.ErrStreakNotFound
		}

		return streaks.Record{}, fmt.Errorf("scan streak: %w", err)
	}

	if lastClaim.Valid {
		d := lastClaim.Time.UTC()
		rec.LastClaimDate = &d
	}

	return rec, nil
}
