// Package storage defines the store contracts the services are written
// against, together with the search and pagination types shared by all
// engines.
//
// Two engines implement these contracts: memoryengine (maps guarded by
// per-book locks, used by tests and local runs) and sqlengine (goqu-built SQL
// over Postgres or SQLite). Both derive available copies from the set of open
// loans; neither maintains a separately incremented counter.
package storage
