// Package core contains the domain model for the librarium lending service:
// catalog entities (Book, Author, Category), loan records, users with roles,
// and the error taxonomy shared by all layers.
//
// Everything in this package is pure data and pure functions. Availability of
// a book is never stored here - it is always derived from the set of open
// loans by the storage layer, so the domain model cannot drift from the truth.
package core
