package wallets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/gamebridge/internal/infra/pgtestutil"
	"github.com/fastprodman/gamebridge/internal/repos/wallets"
)

func TestWallets_DecreaseBalance_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		seedBalance   int64
		seed          bool
		amount        int64
		wantBalance   int64
		wantErr       bool // true -> expect wallets.ErrInsufficientFunds
		checkFinalBal bool
	}{
		{
			name:          "sufficient_funds_decrease_from_positive",
			seed:          true,
			seedBalance:   1_000,
			amount:        250,
			wantBalance:   750,
			checkFinalBal: true,
		},
		{
			name:          "sufficient_funds_exact_to_zero",
			seed:          true,
			seedBalance:   300,
			amount:        300,
			wantBalance:   0,
			checkFinalBal: true,
		},
		{
			name:          "insufficient_funds_balance_unchanged",
			seed:          true,
			seedBalance:   200,
			amount:        300,
			wantBalance:   200,
			wantErr:       true,
			checkFinalBal: true,
		},
		{
			name:    "wallet_missing_treated_as_insufficient",
			amount:  100,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			if tt.seed {
				pgtestutil.SeedAccount(t, db, 201, tt.seedBalance)
			}

			repo := New(db)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			_, err = repo.DecreaseBalance(ctx, tx, 201, tt.amount)

			if tt.wantErr {
				if !errors.Is(err, wallets.ErrInsufficientFunds) {
					t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
				}
			} else {
				if err != nil {
					t.Fatalf("decrease balance: %v", err)
				}
				err = tx.Commit()
				if err != nil {
					t.Fatalf("commit: %v", err)
				}
			}

			if tt.checkFinalBal {
				got, gerr := repo.GetBalance(ctx, 201)
				if gerr != nil {
					t.Fatalf("get balance after decrease: %v", gerr)
				}
				if got != tt.wantBalance {
					t.Fatalf("final balance mismatch: want %d, got %d", tt.wantBalance, got)
				}
			}
		})
	}
}

func TestWallets_DecreaseBalance_ConcurrentGuard(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	pgtestutil.SeedAccount(t, db, 1, 1000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, insufficient := 0, 0

	worker := func(name string) {
		defer wg.Done()

		ctx := context.Background()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Errorf("[%s] begin tx: %v", name, err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		// Lock row first (this will serialize)
		_, err = repo.LockAndGetBalance(ctx, tx, 1)
		if err != nil {
			t.Errorf("[%s] lock balance: %v", name, err)
			return
		}

		_, err = repo.DecreaseBalance(ctx, tx, 1, 1000)
		if err == nil {
			mu.Lock()
			success++
			mu.Unlock()
			if err := tx.Commit(); err != nil {
				t.Errorf("[%s] commit: %v", name, err)
			}
			return
		}

		if errors.Is(err, wallets.ErrInsufficientFunds) {
			mu.Lock()
			insufficient++
			mu.Unlock()
			return
		}

		t.Errorf("[%s] unexpected error: %v", name, err)
	}

	wg.Add(2)
	go worker("A")
	go worker("B")
	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("want 1 success and 1 insufficient, got success=%d insufficient=%d", success, insufficient)
	}
}
