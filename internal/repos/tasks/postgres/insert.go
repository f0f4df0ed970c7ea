package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/repos/tasks"
)

// enqueueLockKey is the transaction-level advisory lock serializing enqueues.
// It is held until commit, so tasks become visible in seq order.
const enqueueLockKey int64 = 0x67627471 // "gbtq"

func (r *tasksRepo) Insert(ctx context.Context, tx *sql.Tx, task tasks.Task) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, enqueueLockKey)
	if err != nil {
		return fmt.Errorf("lock task queue: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, order_id, external_subject_id, effect_id, quantity, payload, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, task.ID, task.OrderID, task.ExternalSubjectID, task.EffectID, task.Quantity, task.Payload, task.Message)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}
