package movements

import (
	"context"
	"database/sql"
	"time"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
)

// Reason tags why a balance moved.
type Reason string

const (
	ReasonPurchase    Reason = "PURCHASE"
	ReasonDailyReward Reason = "DAILY_REWARD"
	ReasonAdminAdjust Reason = "ADMIN_ADJUST"
)

// Movement is one append-only balance change. Delta is negative for debits.
type Movement struct {
	ID        int64
	AccountID uint64
	Delta     int64
	Reason    Reason
	Note      string
	CreatedAt time.Time
}

type Movements interface {
	Insert(ctx context.Context, tx *sql.Tx, m Movement) error
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]Movement, error)
	SumDeltas(ctx context.Context, q pgutils.Querier, accountID uint64) (int64, error)
}
