package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

// ReserveLoan atomically claims one available copy and inserts the loan.
// The critical section is scoped to this one book: borrows of unrelated
// books proceed concurrently.
func (e *Engine) ReserveLoan(_ context.Context, loan core.Loan) error {
	lock := e.bookLock(loan.BookISBN)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	book, exists := e.books[loan.BookISBN]
	if !exists {
		return fmt.Errorf("%w: book %q", core.ErrNotFound, loan.BookISBN)
	}

	available := book.TotalCopies - e.openLoanCount(loan.BookISBN)
	if available <= 0 {
		e.logInfo(logMsgOutOfStock, logAttrISBN, loan.BookISBN, logAttrMemberID, loan.MemberID)
		return fmt.Errorf("%w: book %q", core.ErrOutOfStock, loan.BookISBN)
	}

	e.loans[loan.ID] = loan
	e.logInfo(logMsgLoanReserved,
		logAttrLoanID, loan.ID,
		logAttrISBN, loan.BookISBN,
		logAttrAvailable, available-1)

	return nil
}

// CloseLoan sets the return date, releasing the copy. Closing twice fails
// with core.ErrAlreadyReturned and does not change availability.
func (e *Engine) CloseLoan(_ context.Context, id string, returnedAt time.Time) (core.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loan, exists := e.loans[id]
	if !exists {
		return core.Loan{}, fmt.Errorf("%w: loan %q", core.ErrNotFound, id)
	}

	if !loan.IsOpen() {
		return core.Loan{}, core.ErrAlreadyReturned
	}

	returned := returnedAt
	loan.ReturnDate = &returned
	e.loans[id] = loan

	e.logInfo(logMsgLoanClosed, logAttrLoanID, id, logAttrISBN, loan.BookISBN)

	return loan, nil
}

// LoanByID returns one loan joined with display names.
func (e *Engine) LoanByID(_ context.Context, id string) (storage.LoanRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	loan, exists := e.loans[id]
	if !exists {
		return storage.LoanRecord{}, fmt.Errorf("%w: loan %q", core.ErrNotFound, id)
	}

	return e.recordLocked(loan), nil
}

// LoansByMember returns a member's full borrow history, newest first.
func (e *Engine) LoansByMember(_ context.Context, memberID string) ([]storage.LoanRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records := make([]storage.LoanRecord, 0)

	for _, loan := range e.loans {
		if loan.MemberID == memberID {
			records = append(records, e.recordLocked(loan))
		}
	}

	sortRecords(records)

	return records, nil
}

// OpenLoans returns the paginated librarian view of unreturned loans,
// optionally filtered by member name.
func (e *Engine) OpenLoans(_ context.Context, search storage.OpenLoanSearch) (storage.LoanPage, error) {
	search.Normalize()

	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make([]storage.LoanRecord, 0)

	for _, loan := range e.loans {
		if !loan.IsOpen() {
			continue
		}

		record := e.recordLocked(loan)

		if search.MemberName != "" &&
			!strings.Contains(strings.ToLower(record.MemberName), strings.ToLower(search.MemberName)) {
			continue
		}

		matches = append(matches, record)
	}

	sortRecords(matches)

	pagination := storage.Paginate(search.Page, search.PerPage, len(matches))
	from, to := pagination.Slice(len(matches))

	return storage.LoanPage{
		Items:      matches[from:to],
		Pagination: pagination,
	}, nil
}

// ListLoans returns every loan ever recorded, newest first.
func (e *Engine) ListLoans(_ context.Context) ([]storage.LoanRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records := make([]storage.LoanRecord, 0, len(e.loans))
	for _, loan := range e.loans {
		records = append(records, e.recordLocked(loan))
	}

	sortRecords(records)

	return records, nil
}

// recordLocked joins a loan with display names. Callers must hold e.mu.
// A deleted book or member leaves the name empty; the loan itself is kept.
func (e *Engine) recordLocked(loan core.Loan) storage.LoanRecord {
	record := storage.LoanRecord{Loan: loan}

	if book, ok := e.books[loan.BookISBN]; ok {
		record.BookTitle = book.Title
	}

	if user, ok := e.users[loan.MemberID]; ok {
		record.MemberName = user.Name
	}

	return record
}

func sortRecords(records []storage.LoanRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].BorrowDate.Equal(records[j].BorrowDate) {
			return records[i].BorrowDate.After(records[j].BorrowDate)
		}

		return records[i].ID < records[j].ID
	})
}
