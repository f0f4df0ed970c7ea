package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/google/uuid"
)

func (r *tasksRepo) DeleteByIDs(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (int64, []uuid.UUID, error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}

	rows, err := tx.QueryContext(ctx, `
		DELETE FROM tasks
		WHERE id = ANY($1::text[]::uuid[])
		RETURNING order_id
	`, pgutils.UUIDStrings(ids))
	if err != nil {
		return 0, nil, fmt.Errorf("delete tasks: %w", err)
	}
	defer rows.Close()

	var (
		deleted  int64
		orderIDs []uuid.UUID
	)

	for rows.Next() {
		var orderID uuid.NullUUID

		err = rows.Scan(&orderID)
		if err != nil {
			return 0, nil, fmt.Errorf("scan deleted task: %w", err)
		}

		deleted++

		if orderID.Valid {
			orderIDs = append(orderIDs, orderID.UUID)
		}
	}

	err = rows.Err()
	if err != nil {
		return 0, nil, fmt.Errorf("iterate deleted tasks: %w", err)
	}

	return deleted, orderIDs, nil
}
