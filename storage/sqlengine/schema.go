package sqlengine

import "context"

// Postgres schema. Loans deliberately carry no foreign key to books or users:
// loan records are immutable history and must survive deletion of a book with
// no open loans or of a user account.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES authors (id),
		category_id BIGINT NOT NULL REFERENCES categories (id),
		total_copies INTEGER NOT NULL CHECK (total_copies >= 1),
		cover TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		book_isbn TEXT NOT NULL,
		member_id TEXT NOT NULL,
		borrow_date TIMESTAMP WITH TIME ZONE NOT NULL,
		due_date TIMESTAMP WITH TIME ZONE NOT NULL,
		return_date TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE INDEX IF NOT EXISTS loans_open_by_book ON loans (book_isbn) WHERE return_date IS NULL`,
	`CREATE INDEX IF NOT EXISTS loans_by_member ON loans (member_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
}

// SQLite schema, same shape with sqlite column affinities.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		total_copies INTEGER NOT NULL CHECK (total_copies >= 1),
		cover TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		book_isbn TEXT NOT NULL,
		member_id TEXT NOT NULL,
		borrow_date TIMESTAMP NOT NULL,
		due_date TIMESTAMP NOT NULL,
		return_date TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS loans_by_member ON loans (member_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
}

// Bootstrap creates the schema if it does not exist yet.
func (e *Engine) Bootstrap(ctx context.Context) error {
	schema := postgresSchema
	if e.dialect == DialectSQLite {
		schema = sqliteSchema
	}

	for _, statement := range schema {
		if _, err := e.db.Exec(ctx, statement); err != nil {
			e.logError(logMsgExecFailed, logAttrError, err.Error(), logAttrQuery, statement)
			return wrapDBError(err)
		}
	}

	return nil
}
