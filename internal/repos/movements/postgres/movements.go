package movements

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
)

var _ movements.Movements = (*movementsRepo)(nil)

type movementsRepo struct{ db *sql.DB }

func New(db *sql.DB) *movementsRepo {
	return &movementsRepo{db: db}
}

func (r *movementsRepo) Insert(ctx context.Context, tx *sql.Tx, m movements.Movement) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO movements (account_id, delta, reason, note)
		VALUES ($1, $2, $3, $4)
	`, m.AccountID, m.Delta, string(m.Reason), m.Note)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// ListByAccount returns the newest movements first.
func (r *movementsRepo) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]movements.Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, delta, reason, note, created_at
		FROM movements
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	out := make([]movements.Movement, 0, limit)

	for rows.Next() {
		var (
			m      movements.Movement
			reason string
		)

		err = rows.Scan(&m.ID, &m.AccountID, &m.Delta, &reason, &m.Note, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}

		m.Reason = movements.Reason(reason)
		out = append(out, m)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}

	return out, nil
}

func (r *movementsRepo) SumDeltas(ctx context.Context, q pgutils.Querier, accountID uint64) (int64, error) {
	var sum int64

	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delta), 0)
		FROM movements
		WHERE account_id = $1
	`, accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum deltas: %w", err)
	}

	return sum, nil
}
