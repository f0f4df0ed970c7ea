package tasks

import (
	"context"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/tasks"
)

func (r *tasksRepo) ListPending(ctx context.Context, limit int) ([]tasks.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, external_subject_id, effect_id, quantity, payload, message, created_at
		FROM tasks
		ORDER BY seq
		LIMIT NULLIF($1::int, 0)
	`, max(limit, 0))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []tasks.Task

	for rows.Next() {
		var t tasks.Task

		err = rows.Scan(&t.ID, &t.OrderID, &t.ExternalSubjectID, &t.EffectID, &t.Quantity, &t.Payload, &t.Message, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return out, nil
}

func (r *tasksRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return n, nil
}
