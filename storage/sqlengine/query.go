package sqlengine

import (
	"context"

	"github.com/librarium/librarium/storage/sqlengine/internal/adapters"
)

// querier is the subset of database operations shared by the pool adapter and
// an open transaction, so the same statement helpers serve both.
type querier interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// query renders a goqu statement and executes it on the given handle.
func (e *Engine) query(ctx context.Context, db querier, stmt sqlConvertible) (adapters.DBRows, error) {
	sqlQuery, err := e.toSQL(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, sqlQuery)
	if err != nil {
		e.logError(logMsgQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return nil, wrapDBError(err)
	}

	return rows, nil
}

// exec renders a goqu statement, executes it and returns the affected row count.
func (e *Engine) exec(ctx context.Context, db querier, stmt sqlConvertible) (int64, error) {
	sqlQuery, err := e.toSQL(stmt)
	if err != nil {
		return 0, err
	}

	result, err := db.Exec(ctx, sqlQuery)
	if err != nil {
		e.logError(logMsgExecFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return 0, wrapDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapDBError(err)
	}

	return affected, nil
}

// queryCount runs a statement expected to return a single integer.
func (e *Engine) queryCount(ctx context.Context, db querier, stmt sqlConvertible) (int, error) {
	rows, err := e.query(ctx, db, stmt)
	if err != nil {
		return 0, err
	}
	defer e.closeRows(rows)

	count := 0
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			e.logError(logMsgScanRowFailed, logAttrError, err.Error())
			return 0, wrapDBError(err)
		}
	}

	return count, nil
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error. A failed transaction leaves no partial state behind.
func (e *Engine) inTx(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, err := e.db.BeginTx(ctx)
	if err != nil {
		return wrapDBError(err)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			e.logWarn(logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapDBError(err)
	}

	return nil
}
