package bindings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/gamebridge/internal/infra/pgtestutil"
	"github.com/fastprodman/gamebridge/internal/repos/bindings"
)

func TestBindings_Insert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    func(t *testing.T, db *sql.DB)
		binding bindings.Binding
		wantErr error
	}{
		{
			name:    "ok_insert",
			seed:    func(t *testing.T, db *sql.DB) { pgtestutil.SeedAccount(t, db, 1, 0) },
			binding: bindings.Binding{AccountID: 1, ExternalSubjectID: "uuid-a", DisplayName: "Alex"},
		},
		{
			name: "account_already_linked",
			seed: func(t *testing.T, db *sql.DB) {
				pgtestutil.SeedAccount(t, db, 1, 0)
				pgtestutil.SeedBinding(t, db, 1, "uuid-a", "Alex")
			},
			binding: bindings.Binding{AccountID: 1, ExternalSubjectID: "uuid-b", DisplayName: "Steve"},
			wantErr: bindings.ErrAccountLinked,
		},
		{
			name: "subject_already_linked",
			seed: func(t *testing.T, db *sql.DB) {
				pgtestutil.SeedAccount(t, db, 1, 0)
				pgtestutil.SeedAccount(t, db, 2, 0)
				pgtestutil.SeedBinding(t, db, 1, "uuid-a", "Alex")
			},
			binding: bindings.Binding{AccountID: 2, ExternalSubjectID: "uuid-a", DisplayName: "Alex"},
			wantErr: bindings.ErrSubjectLinked,
		},
		{
			name:    "unknown_account",
			seed:    func(t *testing.T, db *sql.DB) {},
			binding: bindings.Binding{AccountID: 404, ExternalSubjectID: "uuid-z", DisplayName: "Zed"},
			wantErr: bindings.ErrUnknownAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			tt.seed(t, db)

			repo := New(db)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.Insert(ctx, tx, tt.binding)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("insert: %v", err)
			}

			got, err := repo.GetByAccount(ctx, tx, tt.binding.AccountID)
			if err != nil {
				t.Fatalf("get by account: %v", err)
			}
			if got != tt.binding {
				t.Fatalf("binding mismatch: want %+v, got %+v", tt.binding, got)
			}
		})
	}
}

func TestBindings_GetByAccount_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := New(db).GetByAccount(t.Context(), db, 1)
	if !errors.Is(err, bindings.ErrBindingNotFound) {
		t.Fatalf("want ErrBindingNotFound, got %v", err)
	}
}
