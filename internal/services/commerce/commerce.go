// Package commerce turns a purchase request into a debit, an order and a
// queued delivery task, all committed in one transaction.
package commerce

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/metrics"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/bindings"
	pgbindings "github.com/fastprodman/gamebridge/internal/repos/bindings/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	"github.com/fastprodman/gamebridge/internal/repos/orders"
	pgorders "github.com/fastprodman/gamebridge/internal/repos/orders/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/tasks"
	"github.com/fastprodman/gamebridge/internal/services/catalog"
	"github.com/fastprodman/gamebridge/internal/services/delivery"
	"github.com/google/uuid"
)

const (
	purchaseMessage   = "Purchase completed"
	checkpointMessage = "Checkpoint saved"
	checkpointEffect  = "checkpoint:set"
)

var ErrAccountNotLinked = fmt.Errorf("account not linked to a player: %w", apperr.ErrUnauthorized)

type debiter interface {
	DebitTx(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64, reason movements.Reason, note string) (int64, error)
}

type enqueuer interface {
	EnqueueTx(ctx context.Context, tx *sql.Tx, task tasks.Task) (tasks.Task, error)
}

type Coordinator struct {
	db       *sql.DB
	catalog  *catalog.Catalog
	ledger   debiter
	queue    enqueuer
	bindings bindings.Bindings
	orders   orders.Orders
	timeout  time.Duration
}

func New(dbx *sql.DB, c *catalog.Catalog, l debiter, q *delivery.Queue, timeout time.Duration) *Coordinator {
	return &Coordinator{
		db:       dbx,
		catalog:  c,
		ledger:   l,
		queue:    q,
		bindings: pgbindings.New(dbx),
		orders:   pgorders.New(dbx),
		timeout:  timeout,
	}
}

type Request struct {
	AccountID uint64
	EffectID  string
	Quantity  int
	Payload   json.RawMessage
}

type Receipt struct {
	OrderID uuid.UUID `json:"orderId"`
	TaskID  uuid.UUID `json:"taskId"`
	Price   int64     `json:"price"`
	Balance int64     `json:"balance"`
}

// Purchase runs the whole purchase in one transaction:
//
// 1) Resolve the player bound to the account.
// 2) Validate the effect, quantity and payload, then price them.
// 3) Debit the wallet under its row lock.
// 4) Record the order.
// 5) Enqueue the delivery task.
//
// Any failure rolls everything back. Failures after the debit are reported as
// apperr.ErrInvariant unless they are transient.
func (c *Coordinator) Purchase(ctx context.Context, req Request) (Receipt, error) {
	r, err := c.purchase(ctx, req)

	metrics.Purchases.WithLabelValues(apperr.KindOf(err)).Inc()

	if err != nil {
		return Receipt{}, err
	}

	metrics.CurrencySpent.Add(float64(r.Price))
	metrics.TasksEnqueued.WithLabelValues(string(delivery.SourcePurchase)).Inc()

	slog.Info("purchase completed",
		"account_id", req.AccountID,
		"effect_id", req.EffectID,
		"quantity", req.Quantity,
		"order_id", r.OrderID,
		"price", r.Price,
	)

	return r, nil
}

func (c *Coordinator) purchase(ctx context.Context, req Request) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r Receipt

	err := pgutils.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		b, err := c.binding(ctx, tx, req.AccountID)
		if err != nil {
			return err
		}

		err = c.catalog.Validate(req.EffectID, req.Quantity)
		if err != nil {
			return err
		}

		params, err := c.catalog.ParseParams(req.EffectID, req.Payload)
		if err != nil {
			return err
		}

		price, err := c.catalog.PriceOf(req.EffectID, req.Quantity, params)
		if err != nil {
			return err
		}

		payload, err := catalog.Encode(params)
		if err != nil {
			return err
		}

		orderID := uuid.New()

		r.Balance, err = c.ledger.DebitTx(ctx, tx, req.AccountID, price, movements.ReasonPurchase, "order "+orderID.String())
		if err != nil {
			return fmt.Errorf("debit: %w", err)
		}

		err = c.orders.Insert(ctx, tx, orders.Order{
			ID:                orderID,
			AccountID:         req.AccountID,
			ExternalSubjectID: b.ExternalSubjectID,
			EffectID:          req.EffectID,
			Quantity:          req.Quantity,
			Price:             price,
		})
		if err != nil {
			return afterDebit("record order", err)
		}

		task, err := c.queue.EnqueueTx(ctx, tx, tasks.Task{
			OrderID:           uuid.NullUUID{UUID: orderID, Valid: true},
			ExternalSubjectID: b.ExternalSubjectID,
			EffectID:          req.EffectID,
			Quantity:          req.Quantity,
			Payload:           payload,
			Message:           purchaseMessage,
		})
		if err != nil {
			return afterDebit("enqueue task", err)
		}

		r.OrderID = orderID
		r.TaskID = task.ID
		r.Price = price

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("purchase: %w", err)
	}

	return r, nil
}

// Checkpoint queues the free checkpoint action for the bound player.
// No debit and no order are recorded.
func (c *Coordinator) Checkpoint(ctx context.Context, accountID uint64) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var taskID uuid.UUID

	err := pgutils.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		b, err := c.binding(ctx, tx, accountID)
		if err != nil {
			return err
		}

		task, err := c.queue.EnqueueTx(ctx, tx, tasks.Task{
			ExternalSubjectID: b.ExternalSubjectID,
			EffectID:          checkpointEffect,
			Quantity:          1,
			Message:           checkpointMessage,
		})
		if err != nil {
			return fmt.Errorf("enqueue checkpoint: %w", err)
		}

		taskID = task.ID

		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("checkpoint: %w", err)
	}

	metrics.TasksEnqueued.WithLabelValues(string(delivery.SourceFree)).Inc()

	return taskID, nil
}

func (c *Coordinator) binding(ctx context.Context, tx *sql.Tx, accountID uint64) (bindings.Binding, error) {
	b, err := c.bindings.GetByAccount(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, bindings.ErrBindingNotFound) {
			return bindings.Binding{}, ErrAccountNotLinked
		}

		return bindings.Binding{}, fmt.Errorf("resolve binding: %w", err)
	}

	return b, nil
}

func afterDebit(step string, err error) error {
	err = pgutils.Classify(err)
	if errors.Is(err, apperr.ErrTransient) {
		return fmt.Errorf("%s: %w", step, err)
	}

	return apperr.Invariant(step, err)
}
