package tasks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Task is one unit of work for the game server. OrderID is unset for free
// actions that were not purchased.
type Task struct {
	ID                uuid.UUID
	OrderID           uuid.NullUUID
	ExternalSubjectID string
	EffectID          string
	Quantity          int
	Payload           string
	Message           string
	CreatedAt         time.Time
}

type Tasks interface {
	Insert(ctx context.Context, tx *sql.Tx, task Task) error
	// ListPending returns tasks in enqueue order. limit <= 0 means all.
	ListPending(ctx context.Context, limit int) ([]Task, error)
	CountPending(ctx context.Context) (int64, error)
	// DeleteByIDs removes the listed tasks and returns the order ids they carried.
	// Unknown ids are ignored.
	DeleteByIDs(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (deleted int64, orderIDs []uuid.UUID, err error)
}
