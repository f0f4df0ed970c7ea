package bindings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
)

var (
	ErrBindingNotFound = fmt.Errorf("binding %w", apperr.ErrNotFound)
	ErrAccountLinked   = fmt.Errorf("account already linked: %w", apperr.ErrConflict)
	ErrSubjectLinked   = fmt.Errorf("external subject already linked: %w", apperr.ErrConflict)
	ErrUnknownAccount  = fmt.Errorf("account %w", apperr.ErrNotFound)
)

// Binding ties an account to its in-game identity. Created once, then read-only.
type Binding struct {
	AccountID         uint64
	ExternalSubjectID string
	DisplayName       string
}

type Bindings interface {
	GetByAccount(ctx context.Context, q pgutils.Querier, accountID uint64) (Binding, error)
	Insert(ctx context.Context, tx *sql.Tx, b Binding) error
}
