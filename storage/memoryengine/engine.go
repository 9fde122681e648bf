// Package memoryengine implements the storage contracts with plain maps.
// It backs the unit tests and the "memory" storage driver for local runs.
//
// Reservation correctness matches the SQL engine: the check-then-insert of a
// loan runs under a mutex scoped to that one book, so concurrent borrows of
// different books never block each other, and two concurrent borrows of the
// last copy of the same book yield exactly one winner.
package memoryengine

import (
	"sync"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

const (
	logMsgLoanReserved = "loan reserved"
	logMsgLoanClosed   = "loan closed"
	logMsgOutOfStock   = "reservation rejected, no copies available"
	logAttrISBN        = "isbn"
	logAttrLoanID      = "loan_id"
	logAttrMemberID    = "member_id"
	logAttrAvailable   = "available_copies"
)

// Engine is an in-memory storage.Store.
type Engine struct {
	mu         sync.RWMutex
	books      map[string]core.Book
	authors    map[int64]string
	categories map[int64]string
	loans      map[string]core.Loan
	users      map[string]core.User

	nextAuthorID   int64
	nextCategoryID int64

	reservationMu sync.Mutex
	bookLocks     map[string]*sync.Mutex

	logger storage.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine.
func WithLogger(logger storage.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an empty Engine with optional configuration.
func New(options ...Option) *Engine {
	e := &Engine{
		books:      make(map[string]core.Book),
		authors:    make(map[int64]string),
		categories: make(map[int64]string),
		loans:      make(map[string]core.Loan),
		users:      make(map[string]core.User),
		bookLocks:  make(map[string]*sync.Mutex),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

var _ storage.Store = (*Engine)(nil)

// bookLock returns the reservation mutex for one ISBN, creating it on first use.
func (e *Engine) bookLock(isbn string) *sync.Mutex {
	e.reservationMu.Lock()
	defer e.reservationMu.Unlock()

	lock, ok := e.bookLocks[isbn]
	if !ok {
		lock = &sync.Mutex{}
		e.bookLocks[isbn] = lock
	}

	return lock
}

// openLoanCount counts open loans for one ISBN. Callers must hold e.mu.
func (e *Engine) openLoanCount(isbn string) int {
	count := 0

	for _, loan := range e.loans {
		if loan.BookISBN == isbn && loan.IsOpen() {
			count++
		}
	}

	return count
}

func (e *Engine) logInfo(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}
