package config

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// OpenSQLite opens a sqlite database file. A single writer connection is
// enforced so writing transactions serialize in the driver instead of
// failing with SQLITE_BUSY under concurrent borrows.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
