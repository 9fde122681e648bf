package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/sqlengine/internal/adapters"
)

// loanSelect is the joined loan read path. Books and users are joined
// left-outer: loans are immutable history and must stay readable after the
// book or the member account is gone.
func (e *Engine) loanSelect() *goqu.SelectDataset {
	return e.builder().
		From(tblLoans).
		LeftJoin(goqu.T(tblBooks), goqu.On(goqu.I("loans.book_isbn").Eq(goqu.I("books.isbn")))).
		LeftJoin(goqu.T(tblUsers), goqu.On(goqu.I("loans.member_id").Eq(goqu.I("users.id")))).
		Select(
			goqu.I("loans.id"),
			goqu.I("loans.book_isbn"),
			goqu.I("loans.member_id"),
			goqu.I("loans.borrow_date"),
			goqu.I("loans.due_date"),
			goqu.I("loans.return_date"),
			goqu.L("COALESCE(books.title, '')").As("book_title"),
			goqu.L("COALESCE(users.name, '')").As("member_name"),
		)
}

func (e *Engine) scanLoanRecord(rows adapters.DBRows) (storage.LoanRecord, error) {
	var record storage.LoanRecord
	var returnDate sql.NullTime

	err := rows.Scan(
		&record.ID,
		&record.BookISBN,
		&record.MemberID,
		&record.BorrowDate,
		&record.DueDate,
		&returnDate,
		&record.BookTitle,
		&record.MemberName,
	)
	if err != nil {
		e.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return storage.LoanRecord{}, wrapDBError(err)
	}

	if returnDate.Valid {
		returnedAt := returnDate.Time
		record.ReturnDate = &returnedAt
	}

	return record, nil
}

// ReserveLoan atomically claims one available copy and inserts the loan. The
// transaction locks the book row first, so the open-loan count it compares
// against the copy pool cannot change before the insert commits. Two
// concurrent reservations for the last copy serialize on that lock and
// exactly one wins.
func (e *Engine) ReserveLoan(ctx context.Context, loan core.Loan) error {
	return e.inTx(ctx, func(tx adapters.DBTx) error {
		totalCopies, err := e.lockBookRow(ctx, tx, loan.BookISBN)
		if err != nil {
			return err
		}

		open, err := e.queryCount(ctx, tx, e.openLoanCountStmt(loan.BookISBN))
		if err != nil {
			return err
		}

		if open >= totalCopies {
			return fmt.Errorf("%w: no copies of %q available", core.ErrOutOfStock, loan.BookISBN)
		}

		insert := e.builder().
			Insert(tblLoans).
			Rows(goqu.Record{
				colID:         loan.ID,
				colBookISBN:   loan.BookISBN,
				colMemberID:   loan.MemberID,
				colBorrowDate: loan.BorrowDate,
				colDueDate:    loan.DueDate,
			})

		if _, err := e.exec(ctx, tx, insert); err != nil {
			return err
		}

		return nil
	})
}

// CloseLoan sets the return date and releases the copy. The guard is part of
// the update statement itself, so closing the same loan twice yields exactly
// one success no matter how the calls interleave.
func (e *Engine) CloseLoan(ctx context.Context, id string, returnedAt time.Time) (core.Loan, error) {
	stmt := e.builder().
		Update(tblLoans).
		Set(goqu.Record{colReturnDate: returnedAt}).
		Where(goqu.C(colID).Eq(id), goqu.C(colReturnDate).IsNull())

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		return core.Loan{}, err
	}

	if affected == 0 {
		record, lookupErr := e.LoanByID(ctx, id)
		if lookupErr != nil {
			return core.Loan{}, lookupErr
		}

		if !record.IsOpen() {
			return core.Loan{}, fmt.Errorf("%w: loan %q", core.ErrAlreadyReturned, id)
		}

		return core.Loan{}, fmt.Errorf("%w: loan %q", core.ErrNotFound, id)
	}

	record, err := e.LoanByID(ctx, id)
	if err != nil {
		return core.Loan{}, err
	}

	return record.Loan, nil
}

// LoanByID returns one loan joined with its display names.
func (e *Engine) LoanByID(ctx context.Context, id string) (storage.LoanRecord, error) {
	rows, err := e.query(ctx, e.db, e.loanSelect().Where(goqu.I("loans.id").Eq(id)))
	if err != nil {
		return storage.LoanRecord{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return storage.LoanRecord{}, fmt.Errorf("%w: loan %q", core.ErrNotFound, id)
	}

	return e.scanLoanRecord(rows)
}

// LoansByMember returns the full borrowing history of one member, newest first.
func (e *Engine) LoansByMember(ctx context.Context, memberID string) ([]storage.LoanRecord, error) {
	stmt := e.loanSelect().
		Where(goqu.I("loans.member_id").Eq(memberID)).
		Order(goqu.I("loans.borrow_date").Desc(), goqu.I("loans.id").Asc())

	return e.collectLoans(ctx, stmt)
}

// OpenLoans serves the staff view of unreturned loans, optionally filtered by
// member name, paginated.
func (e *Engine) OpenLoans(ctx context.Context, search storage.OpenLoanSearch) (storage.LoanPage, error) {
	search.Normalize()

	filters := []goqu.Expression{goqu.I("loans.return_date").IsNull()}

	if search.MemberName != "" {
		pattern := "%" + strings.ToLower(search.MemberName) + "%"
		filters = append(filters, goqu.L("LOWER(COALESCE(users.name, '')) LIKE ?", pattern))
	}

	countStmt := e.builder().
		From(tblLoans).
		LeftJoin(goqu.T(tblUsers), goqu.On(goqu.I("loans.member_id").Eq(goqu.I("users.id")))).
		Select(goqu.COUNT(goqu.Star())).
		Where(filters...)

	total, err := e.queryCount(ctx, e.db, countStmt)
	if err != nil {
		return storage.LoanPage{}, err
	}

	pagination := storage.Paginate(search.Page, search.PerPage, total)

	stmt := e.loanSelect().
		Where(filters...).
		Order(goqu.I("loans.borrow_date").Desc(), goqu.I("loans.id").Asc()).
		Limit(uint(search.PerPage)).
		Offset(uint((search.Page - 1) * search.PerPage))

	items, err := e.collectLoans(ctx, stmt)
	if err != nil {
		return storage.LoanPage{}, err
	}

	return storage.LoanPage{
		Items:      items,
		Pagination: pagination,
	}, nil
}

// ListLoans returns every loan ever made, open and closed, newest first.
func (e *Engine) ListLoans(ctx context.Context) ([]storage.LoanRecord, error) {
	stmt := e.loanSelect().
		Order(goqu.I("loans.borrow_date").Desc(), goqu.I("loans.id").Asc())

	return e.collectLoans(ctx, stmt)
}

func (e *Engine) collectLoans(ctx context.Context, stmt *goqu.SelectDataset) ([]storage.LoanRecord, error) {
	rows, err := e.query(ctx, e.db, stmt)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(rows)

	records := make([]storage.LoanRecord, 0)

	for rows.Next() {
		record, scanErr := e.scanLoanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		records = append(records, record)
	}

	return records, nil
}
