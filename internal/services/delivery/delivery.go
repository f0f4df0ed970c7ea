// Package delivery is the durable at-least-once task queue polled by the game
// server. Tasks stay visible to every pull until they are acknowledged.
package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/gamebridge/internal/infra/metrics"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/orders"
	pgorders "github.com/fastprodman/gamebridge/internal/repos/orders/postgres"
	"github.com/fastprodman/gamebridge/internal/repos/tasks"
	pgtasks "github.com/fastprodman/gamebridge/internal/repos/tasks/postgres"
	"github.com/google/uuid"
)

// MaxPull bounds a single pull.
const MaxPull = 500

// Source labels where an enqueued task came from.
type Source string

const (
	SourcePurchase Source = "purchase"
	SourceFree     Source = "free"
)

type Queue struct {
	db      *sql.DB
	tasks   tasks.Tasks
	orders  orders.Orders
	timeout time.Duration
}

func New(dbx *sql.DB, timeout time.Duration) *Queue {
	return &Queue{
		db:      dbx,
		tasks:   pgtasks.New(dbx),
		orders:  pgorders.New(dbx),
		timeout: timeout,
	}
}

// EnqueueTx appends task inside tx. A zero ID is replaced with a fresh one;
// the final task is returned.
func (q *Queue) EnqueueTx(ctx context.Context, tx *sql.Tx, task tasks.Task) (tasks.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := q.tasks.Insert(ctx, tx, task)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

// Enqueue appends task in its own transaction.
func (q *Queue) Enqueue(ctx context.Context, task tasks.Task, source Source) (tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	var out tasks.Task

	err := pgutils.WithTx(ctx, q.db, func(tx *sql.Tx) error {
		var err error

		out, err = q.EnqueueTx(ctx, tx, task)

		return err
	})
	if err != nil {
		return tasks.Task{}, fmt.Errorf("enqueue: %w", err)
	}

	metrics.TasksEnqueued.WithLabelValues(string(source)).Inc()

	return out, nil
}

// Pull returns pending tasks in enqueue order without removing them.
// limit <= 0 or above MaxPull is clamped to MaxPull.
func (q *Queue) Pull(ctx context.Context, limit int) ([]tasks.Task, error) {
	if limit <= 0 || limit > MaxPull {
		limit = MaxPull
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	list, err := q.tasks.ListPending(ctx, limit)
	if err != nil {
		return nil, pgutils.Classify(fmt.Errorf("list pending: %w", err))
	}

	pending, err := q.tasks.CountPending(ctx)
	if err == nil {
		metrics.TasksPending.Set(float64(pending))
	} else {
		slog.Warn("count pending tasks", "error", err)
	}

	return list, nil
}

// AckResult reports what an acknowledgement changed.
type AckResult struct {
	Removed   int64 `json:"removed"`
	Delivered int64 `json:"ordersDelivered"`
}

// Ack removes the tasks with the given ids and marks their orders DELIVERED,
// in one transaction. Malformed and unknown ids are ignored, so repeating an
// ack is a no-op.
func (q *Queue) Ack(ctx context.Context, ids []string) (AckResult, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))

	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		parsed = append(parsed, id)
	}

	if len(parsed) == 0 {
		return AckResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	var res AckResult

	err := pgutils.WithTx(ctx, q.db, func(tx *sql.Tx) error {
		removed, orderIDs, err := q.tasks.DeleteByIDs(ctx, tx, parsed)
		if err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}

		delivered, err := q.orders.MarkDelivered(ctx, tx, orderIDs)
		if err != nil {
			return fmt.Errorf("mark orders delivered: %w", err)
		}

		res = AckResult{Removed: removed, Delivered: delivered}

		return nil
	})
	if err != nil {
		return AckResult{}, fmt.Errorf("ack: %w", err)
	}

	metrics.TasksAcknowledged.Add(float64(res.Removed))

	return res, nil
}
