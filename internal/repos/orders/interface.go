package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/google/uuid"
)

var ErrOrderNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDelivered Status = "DELIVERED"
)

type Order struct {
	ID                uuid.UUID
	AccountID         uint64
	ExternalSubjectID string
	EffectID          string
	Quantity          int
	Price             int64
	Status            Status
	CreatedAt         time.Time
	DeliveredAt       *time.Time
}

type Orders interface {
	Insert(ctx context.Context, tx *sql.Tx, o Order) error
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	// MarkDelivered moves pending orders to DELIVERED and reports how many changed.
	MarkDelivered(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (int64, error)
}
