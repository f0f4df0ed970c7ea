// Package rewards implements the daily login reward and its streak.
package rewards

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/metrics"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	"github.com/fastprodman/gamebridge/internal/repos/streaks"
	pgstreaks "github.com/fastprodman/gamebridge/internal/repos/streaks/postgres"
)

var ErrAlreadyClaimedToday = fmt.Errorf("daily reward already claimed today: %w", apperr.ErrConflict)

type crediter interface {
	CreditTx(ctx context.Context, tx *sql.Tx, accountID uint64, amount int64, reason movements.Reason, note string) (int64, error)
}

type Service struct {
	db      *sql.DB
	streaks streaks.Streaks
	ledger  crediter
	timeout time.Duration
	now     func() time.Time
}

func New(dbx *sql.DB, l crediter, timeout time.Duration) *Service {
	return &Service{
		db:      dbx,
		streaks: pgstreaks.New(dbx),
		ledger:  l,
		timeout: timeout,
		now:     time.Now,
	}
}

type Status struct {
	CanClaim bool `json:"canClaim"`
	// TodayReward is what a claim now would add, or what today's claim added.
	TodayReward   int64      `json:"todayReward"`
	Streak        int        `json:"streak"`
	LastClaimDate *time.Time `json:"lastClaimDate"`
}

type Claim struct {
	Added         int64     `json:"added"`
	Balance       int64     `json:"balance"`
	Streak        int       `json:"streak"`
	LastClaimDate time.Time `json:"lastClaimDate"`
}

// Status reads the streak without locking or changing it.
func (s *Service) Status(ctx context.Context, accountID uint64) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.streaks.Get(ctx, s.db, accountID)
	if err != nil {
		return Status{}, pgutils.Classify(fmt.Errorf("get streak: %w", err))
	}

	canClaim, level := next(rec.LastClaimDate, rec.Streak, s.now())

	return Status{
		CanClaim:      canClaim,
		TodayReward:   RewardFor(level),
		Streak:        rec.Streak,
		LastClaimDate: rec.LastClaimDate,
	}, nil
}

// Claim credits today's reward. The streak row is locked before the day
// difference is evaluated, so concurrent claims for one account serialize and
// all but the first see ErrAlreadyClaimedToday.
func (s *Service) Claim(ctx context.Context, accountID uint64) (Claim, error) {
	c, err := s.claim(ctx, accountID)

	metrics.RewardClaims.WithLabelValues(apperr.KindOf(err)).Inc()

	if err != nil {
		return Claim{}, err
	}

	metrics.CurrencyRewarded.Add(float64(c.Added))

	slog.Info("daily reward claimed", "account_id", accountID, "streak", c.Streak, "added", c.Added)

	return c, nil
}

func (s *Service) claim(ctx context.Context, accountID uint64) (Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	today := utcDate(s.now())

	var c Claim

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rec, err := s.streaks.LockAndGet(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("lock streak: %w", err)
		}

		canClaim, level := next(rec.LastClaimDate, rec.Streak, today)
		if !canClaim {
			return ErrAlreadyClaimedToday
		}

		rec.LastClaimDate = &today
		rec.Streak = level

		err = s.streaks.Save(ctx, tx, rec)
		if err != nil {
			return fmt.Errorf("save streak: %w", err)
		}

		added := RewardFor(level)

		balance, err := s.ledger.CreditTx(ctx, tx, accountID, added, movements.ReasonDailyReward, fmt.Sprintf("streak %d", level))
		if err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}

		c = Claim{Added: added, Balance: balance, Streak: level, LastClaimDate: today}

		return nil
	})
	if err != nil {
		return Claim{}, fmt.Errorf("claim: %w", err)
	}

	return c, nil
}

// Reset clears the streak so the next claim starts at level 1.
func (s *Service) Reset(ctx context.Context, accountID uint64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.streaks.LockAndGet(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("lock streak: %w", err)
		}

		return s.streaks.Save(ctx, tx, streaks.Record{AccountID: accountID})
	})
	if err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}

	slog.Info("daily reward streak reset", "account_id", accountID)

	return nil
}
