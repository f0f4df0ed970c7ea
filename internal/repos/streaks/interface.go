package streaks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
)

var ErrStreakNotFound = fmt.Errorf("streak record %w", apperr.ErrNotFound)

// Record is the daily-reward state of one account. LastClaimDate is a UTC
// calendar date (midnight) or nil when the account never claimed.
type Record struct {
	AccountID     uint64
	LastClaimDate *time.Time
	Streak        int
}

type Streaks interface {
	Create(ctx context.Context, tx *sql.Tx, accountID uint64) error
	Get(ctx context.Context, q pgutils.Querier, accountID uint64) (Record, error)
	// LockAndGet reads the record under a row lock held until tx ends.
	LockAndGet(ctx context.Context, tx *sql.Tx, accountID uint64) (Record, error)
	Save(ctx context.Context, tx *sql.Tx, rec Record) error
}
