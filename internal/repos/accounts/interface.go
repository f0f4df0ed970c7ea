package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/gamebridge/internal/apperr"
)

var ErrAccountNotFound = fmt.Errorf("account %w", apperr.ErrNotFound)

type Accounts interface {
	Create(ctx context.Context, tx *sql.Tx) (uint64, error)
}
