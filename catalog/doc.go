// Package catalog manages books, authors and categories and serves the
// filtered, paginated catalog search every client depends on. It also hosts
// the import boundary: normalized records from external bibliographic sources
// are turned into catalog writes with create-or-attach metadata semantics,
// and nothing from outside is ever trusted for availability state.
package catalog
