package api

import (
	"context"
	"time"

	"github.com/fastprodman/gamebridge/internal/repos/bindings"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	"github.com/fastprodman/gamebridge/internal/repos/tasks"
	"github.com/fastprodman/gamebridge/internal/services/accounts"
	"github.com/fastprodman/gamebridge/internal/services/catalog"
	"github.com/fastprodman/gamebridge/internal/services/commerce"
	"github.com/fastprodman/gamebridge/internal/services/delivery"
	"github.com/fastprodman/gamebridge/internal/services/rewards"
	"github.com/google/uuid"
)

type Ledger interface {
	GetBalance(ctx context.Context, accountID uint64) (int64, error)
	Movements(ctx context.Context, accountID uint64, limit int) ([]movements.Movement, error)
	Adjust(ctx context.Context, accountID uint64, delta int64, note string) (int64, error)
}

type Commerce interface {
	Purchase(ctx context.Context, req commerce.Request) (commerce.Receipt, error)
	Checkpoint(ctx context.Context, accountID uint64) (uuid.UUID, error)
}

type Rewards interface {
	Status(ctx context.Context, accountID uint64) (rewards.Status, error)
	Claim(ctx context.Context, accountID uint64) (rewards.Claim, error)
	Reset(ctx context.Context, accountID uint64) error
}

type Pairing interface {
	Start(subjectID, displayName string) (string, time.Time, error)
	Complete(ctx context.Context, accountID uint64, code string) (bindings.Binding, error)
	Binding(ctx context.Context, accountID uint64) (bindings.Binding, error)
}

type Queue interface {
	Pull(ctx context.Context, limit int) ([]tasks.Task, error)
	Ack(ctx context.Context, ids []string) (delivery.AckResult, error)
}

type Accounts interface {
	Create(ctx context.Context, initialBalance int64) (accounts.Created, error)
}

type Catalog interface {
	List() []catalog.Listing
}

// Services bundles everything the handlers call.
type Services struct {
	Ledger   Ledger
	Commerce Commerce
	Rewards  Rewards
	Pairing  Pairing
	Queue    Queue
	Accounts Accounts
	Catalog  Catalog
}

// HandlerProvider exposes the services as HTTP handlers.
type HandlerProvider struct {
	svc Services
}

func NewHandler(svc Services) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}
