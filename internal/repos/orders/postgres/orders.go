package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/orders"
	"github.com/google/uuid"
)

var _ orders.Orders = (*ordersRepo)(nil)

type ordersRepo struct{ db *sql.DB }

func New(db *sql.DB) *ordersRepo {
	return &ordersRepo{db: db}
}

func (r *ordersRepo) Insert(ctx context.Context, tx *sql.Tx, o orders.Order) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, account_id, external_subject_id, effect_id, quantity, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.AccountID, o.ExternalSubjectID, o.EffectID, o.Quantity, o.Price, string(orders.StatusPending))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *ordersRepo) Get(ctx context.Context, id uuid.UUID) (orders.Order, error) {
	var (
		o      orders.Order
		status string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, external_subject_id, effect_id, quantity, price, status, created_at, delivered_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.AccountID, &o.ExternalSubjectID, &o.EffectID, &o.Quantity, &o.Price, &status, &o.CreatedAt, &o.DeliveredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrOrderNotFound
		}

		return orders.Order{}, fmt.Errorf("get order: %w", err)
	}

	o.Status = orders.Status(status)

	return o, nil
}

func (r *ordersRepo) MarkDelivered(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, delivered_at = now()
		WHERE id = ANY($1::text[]::uuid[])
		  AND status = $3
	`, pgutils.UUIDStrings(ids), string(orders.StatusDelivered), string(orders.StatusPending))
	if err != nil {
		return 0, fmt.Errorf("mark delivered: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}
