package sqlengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/librarium/librarium/core"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// isConflict reports whether a wrapped driver error maps to core.ErrConflict,
// so call sites can attach a message naming the violated invariant.
func isConflict(err error) bool {
	return errors.Is(err, core.ErrConflict)
}

// wrapDBError maps driver errors onto the core taxonomy. Constraint
// violations become core.ErrConflict; everything else that is not a context
// cancellation becomes core.ErrUnavailable, which callers may retry because
// no partial write survives a failed statement or transaction.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: duplicate key", core.ErrConflict)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: constraint violation", core.ErrConflict)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return errors.Join(core.ErrUnavailable, err)
}
