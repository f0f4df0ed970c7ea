// Package pairing links an account to its in-game player through a short code
// the player requests in-game and then enters on the client.
package pairing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/repos/bindings"
	pgbindings "github.com/fastprodman/gamebridge/internal/repos/bindings/postgres"
)

type Service struct {
	db       *sql.DB
	registry *Registry
	bindings bindings.Bindings
	timeout  time.Duration
}

func New(dbx *sql.DB, r *Registry, timeout time.Duration) *Service {
	return &Service{
		db:       dbx,
		registry: r,
		bindings: pgbindings.New(dbx),
		timeout:  timeout,
	}
}

func (s *Service) Registry() *Registry { return s.registry }

// Start issues a pairing code for a player.
func (s *Service) Start(subjectID, displayName string) (string, time.Time, error) {
	return s.registry.Start(subjectID, displayName)
}

// Complete binds accountID to the player behind code. The code is consumed only
// when the binding was stored.
func (s *Service) Complete(ctx context.Context, accountID uint64, code string) (bindings.Binding, error) {
	code = strings.TrimSpace(code)

	id, err := s.registry.Lookup(code)
	if err != nil {
		return bindings.Binding{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b := bindings.Binding{
		AccountID:         accountID,
		ExternalSubjectID: id.SubjectID,
		DisplayName:       id.DisplayName,
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.bindings.Insert(ctx, tx, b)
	})
	if err != nil {
		return bindings.Binding{}, fmt.Errorf("store binding: %w", err)
	}

	s.registry.Consume(code)

	slog.Info("account linked", "account_id", accountID, "subject_id", b.ExternalSubjectID)

	return b, nil
}

// Binding returns the player bound to accountID.
func (s *Service) Binding(ctx context.Context, accountID uint64) (bindings.Binding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.bindings.GetByAccount(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, bindings.ErrBindingNotFound) {
			return bindings.Binding{}, err
		}

		return bindings.Binding{}, pgutils.Classify(fmt.Errorf("get binding: %w", err))
	}

	return b, nil
}
