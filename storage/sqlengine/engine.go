// Package sqlengine implements the storage contracts on a relational
// database. SQL is built with goqu and executed through adapters wrapping a
// pgx pool, a database/sql handle or a sqlx handle, so the same engine runs
// against Postgres (production) and SQLite (single-node deployments).
//
// Availability is never a stored counter. Every read derives it from the set
// of open loans, and the loan reservation runs a minimal critical section
// scoped to one book row, so two concurrent borrows of the last copy yield
// exactly one winner and unrelated borrows never block each other.
package sqlengine

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/sqlengine/internal/adapters"
)

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

const (
	tblBooks      = "books"
	tblAuthors    = "authors"
	tblCategories = "categories"
	tblLoans      = "loans"
	tblUsers      = "users"

	colISBN         = "isbn"
	colTitle        = "title"
	colAuthorID     = "author_id"
	colCategoryID   = "category_id"
	colTotalCopies  = "total_copies"
	colCover        = "cover"
	colDescription  = "description"
	colID           = "id"
	colName         = "name"
	colBookISBN     = "book_isbn"
	colMemberID     = "member_id"
	colBorrowDate   = "borrow_date"
	colDueDate      = "due_date"
	colReturnDate   = "return_date"
	colEmail        = "email"
	colPasswordHash = "password_hash"
	colRole         = "role"

	logMsgBuildQueryFailed = "failed to build sql query"
	logMsgQueryFailed      = "database query execution failed"
	logMsgExecFailed       = "database execution failed"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgRollbackFailed   = "failed to roll back transaction"
	logAttrError           = "error"
	logAttrQuery           = "query"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrUnknownDialect is returned when a constructor receives an unsupported dialect.
	ErrUnknownDialect = errors.New("unknown sql dialect")

	// ErrBuildingQueryFailed is returned when goqu fails to render a statement.
	ErrBuildingQueryFailed = errors.New("failed to build sql query")
)

// Engine is a relational storage.Store.
type Engine struct {
	db      adapters.DBAdapter
	dialect string
	logger  storage.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the Engine.
func WithLogger(logger storage.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewFromPGXPool creates an Engine using a pgx pool with optional configuration.
func NewFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Engine, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(pool), DialectPostgres, options...)
}

// NewFromSQLDB creates an Engine using a database/sql handle with optional
// configuration. The dialect selects the SQL flavor (postgres or sqlite3).
func NewFromSQLDB(db *sql.DB, dialect string, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	return newEngine(adapters.NewSQLAdapter(db), dialect, options...)
}

// NewFromSQLX creates an Engine using a sqlx handle with optional configuration.
func NewFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), DialectPostgres, options...)
}

func newEngine(db adapters.DBAdapter, dialect string, options ...Option) (*Engine, error) {
	e := &Engine{
		db:      db,
		dialect: dialect,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

var _ storage.Store = (*Engine)(nil)

// builder returns the goqu dialect wrapper for this engine.
func (e *Engine) builder() goqu.DialectWrapper {
	return goqu.Dialect(e.dialect)
}

type sqlConvertible interface {
	ToSQL() (string, []interface{}, error)
}

// toSQL renders a goqu statement to an interpolated SQL string.
func (e *Engine) toSQL(stmt sqlConvertible) (string, error) {
	sqlQuery, _, err := stmt.ToSQL()
	if err != nil {
		e.logError(logMsgBuildQueryFailed, logAttrError, err.Error())
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (e *Engine) logWarn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Engine) logError(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}
