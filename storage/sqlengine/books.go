package sqlengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/sqlengine/internal/adapters"
)

// openLoansByBook counts the open loans of the outer books row. Availability
// is always derived from this count, never read from a stored counter.
var openLoansByBook = goqu.L(
	"(SELECT COUNT(*) FROM loans WHERE loans.book_isbn = books.isbn AND loans.return_date IS NULL)")

// bookSelect is the joined read path: book row, display names and the derived
// open-loan count from which availability is computed.
func (e *Engine) bookSelect() *goqu.SelectDataset {
	return e.builder().
		From(tblBooks).
		Join(goqu.T(tblAuthors), goqu.On(goqu.I("books.author_id").Eq(goqu.I("authors.id")))).
		Join(goqu.T(tblCategories), goqu.On(goqu.I("books.category_id").Eq(goqu.I("categories.id")))).
		Select(
			goqu.I("books.isbn"),
			goqu.I("books.title"),
			goqu.I("books.author_id"),
			goqu.I("books.category_id"),
			goqu.I("books.total_copies"),
			goqu.I("books.cover"),
			goqu.I("books.description"),
			goqu.I("authors.name").As("author_name"),
			goqu.I("categories.name").As("category_name"),
			openLoansByBook.As("open_loans"),
		)
}

func (e *Engine) scanBookDetails(rows adapters.DBRows) (core.BookDetails, error) {
	var details core.BookDetails
	var openLoans int

	err := rows.Scan(
		&details.ISBN,
		&details.Title,
		&details.AuthorID,
		&details.CategoryID,
		&details.TotalCopies,
		&details.Cover,
		&details.Description,
		&details.Author,
		&details.Category,
		&openLoans,
	)
	if err != nil {
		e.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return core.BookDetails{}, wrapDBError(err)
	}

	details.AvailableCopies = details.TotalCopies - openLoans

	return details, nil
}

// InsertBook creates a book after validating its author and category exist.
func (e *Engine) InsertBook(ctx context.Context, book core.Book) (core.BookDetails, error) {
	if err := book.Validate(); err != nil {
		return core.BookDetails{}, err
	}

	if _, err := e.AuthorByID(ctx, book.AuthorID); err != nil {
		return core.BookDetails{}, err
	}

	if _, err := e.CategoryByID(ctx, book.CategoryID); err != nil {
		return core.BookDetails{}, err
	}

	insert := e.builder().
		Insert(tblBooks).
		Rows(goqu.Record{
			colISBN:        book.ISBN,
			colTitle:       book.Title,
			colAuthorID:    book.AuthorID,
			colCategoryID:  book.CategoryID,
			colTotalCopies: book.TotalCopies,
			colCover:       book.Cover,
			colDescription: book.Description,
		})

	if _, err := e.exec(ctx, e.db, insert); err != nil {
		if isConflict(err) {
			return core.BookDetails{}, fmt.Errorf("%w: book with ISBN %q already exists", core.ErrConflict, book.ISBN)
		}

		return core.BookDetails{}, err
	}

	return e.BookByISBN(ctx, book.ISBN)
}

// UpdateBook applies a selective update. Shrinking the copy pool runs inside
// a transaction that locks the book row, so the open-loan count it checks
// cannot grow underneath the update.
func (e *Engine) UpdateBook(ctx context.Context, isbn string, update storage.BookUpdate) (core.BookDetails, error) {
	record := goqu.Record{}

	if update.Title != nil {
		record[colTitle] = *update.Title
	}

	if update.AuthorID != nil {
		if _, err := e.AuthorByID(ctx, *update.AuthorID); err != nil {
			return core.BookDetails{}, err
		}

		record[colAuthorID] = *update.AuthorID
	}

	if update.CategoryID != nil {
		if _, err := e.CategoryByID(ctx, *update.CategoryID); err != nil {
			return core.BookDetails{}, err
		}

		record[colCategoryID] = *update.CategoryID
	}

	if update.Cover != nil {
		record[colCover] = *update.Cover
	}

	if update.Description != nil {
		record[colDescription] = *update.Description
	}

	if update.TotalCopies != nil {
		if *update.TotalCopies < 1 {
			return core.BookDetails{}, fmt.Errorf("%w: total copies must be at least 1", core.ErrValidation)
		}

		record[colTotalCopies] = *update.TotalCopies

		if err := e.updateBookGuarded(ctx, isbn, *update.TotalCopies, record); err != nil {
			return core.BookDetails{}, err
		}

		return e.BookByISBN(ctx, isbn)
	}

	if len(record) == 0 {
		return e.BookByISBN(ctx, isbn)
	}

	stmt := e.builder().Update(tblBooks).Set(record).Where(goqu.C(colISBN).Eq(isbn))

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		return core.BookDetails{}, err
	}

	if affected == 0 {
		return core.BookDetails{}, fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	return e.BookByISBN(ctx, isbn)
}

// updateBookGuarded applies an update that shrinks or grows the copy pool.
// The book row is locked for the duration so the open-loan count stays valid.
func (e *Engine) updateBookGuarded(ctx context.Context, isbn string, totalCopies int, record goqu.Record) error {
	return e.inTx(ctx, func(tx adapters.DBTx) error {
		if _, err := e.lockBookRow(ctx, tx, isbn); err != nil {
			return err
		}

		open, err := e.queryCount(ctx, tx, e.openLoanCountStmt(isbn))
		if err != nil {
			return err
		}

		if totalCopies < open {
			return fmt.Errorf(
				"%w: cannot reduce total copies to %d with %d copies out on loan",
				core.ErrConflict, totalCopies, open)
		}

		stmt := e.builder().Update(tblBooks).Set(record).Where(goqu.C(colISBN).Eq(isbn))

		if _, err := e.exec(ctx, tx, stmt); err != nil {
			return err
		}

		return nil
	})
}

// DeleteBook removes a book unless open loans still reference it. The guard
// is part of the delete statement itself, so a concurrent reservation cannot
// slip between a check and the delete. Closed loans are history and do not
// block deletion.
func (e *Engine) DeleteBook(ctx context.Context, isbn string) error {
	stmt := e.builder().
		Delete(tblBooks).
		Where(
			goqu.C(colISBN).Eq(isbn),
			goqu.L("NOT EXISTS (SELECT 1 FROM loans WHERE loans.book_isbn = ? AND loans.return_date IS NULL)", isbn),
		)

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		return err
	}

	if affected > 0 {
		return nil
	}

	if _, err := e.BookByISBN(ctx, isbn); err != nil {
		return err
	}

	return fmt.Errorf("%w: copies still out on loan", core.ErrConflict)
}

// BookByISBN returns the joined book detail with derived availability.
func (e *Engine) BookByISBN(ctx context.Context, isbn string) (core.BookDetails, error) {
	stmt := e.bookSelect().Where(goqu.I("books.isbn").Eq(isbn))

	rows, err := e.query(ctx, e.db, stmt)
	if err != nil {
		return core.BookDetails{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return core.BookDetails{}, fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	return e.scanBookDetails(rows)
}

// SearchBooks filters, sorts and paginates the catalog. The availability of
// every row is derived in the same statement that reads it.
func (e *Engine) SearchBooks(ctx context.Context, search storage.BookSearch) (storage.BookPage, error) {
	search.Normalize()

	filters := e.bookFilters(search)

	countStmt := e.builder().
		From(tblBooks).
		Join(goqu.T(tblAuthors), goqu.On(goqu.I("books.author_id").Eq(goqu.I("authors.id")))).
		Join(goqu.T(tblCategories), goqu.On(goqu.I("books.category_id").Eq(goqu.I("categories.id")))).
		Select(goqu.COUNT(goqu.Star())).
		Where(filters...)

	total, err := e.queryCount(ctx, e.db, countStmt)
	if err != nil {
		return storage.BookPage{}, err
	}

	pagination := storage.Paginate(search.Page, search.PerPage, total)

	stmt := e.bookSelect().
		Where(filters...).
		Order(goqu.I("books.title").Asc(), goqu.I("books.isbn").Asc()).
		Limit(uint(search.PerPage)).
		Offset(uint((search.Page - 1) * search.PerPage))

	rows, err := e.query(ctx, e.db, stmt)
	if err != nil {
		return storage.BookPage{}, err
	}
	defer e.closeRows(rows)

	items := make([]core.BookDetails, 0, search.PerPage)

	for rows.Next() {
		details, scanErr := e.scanBookDetails(rows)
		if scanErr != nil {
			return storage.BookPage{}, scanErr
		}

		items = append(items, details)
	}

	return storage.BookPage{
		Items:      items,
		Pagination: pagination,
	}, nil
}

func (e *Engine) bookFilters(search storage.BookSearch) []goqu.Expression {
	filters := make([]goqu.Expression, 0, 3)

	if search.Title != "" {
		// LOWER + LIKE instead of ILIKE so the same statement serves sqlite.
		pattern := "%" + strings.ToLower(search.Title) + "%"
		filters = append(filters, goqu.L("LOWER(books.title) LIKE ?", pattern))
	}

	if search.Author != "" {
		filters = append(filters, goqu.I("authors.name").Eq(search.Author))
	}

	if search.Category != "" {
		filters = append(filters, goqu.I("categories.name").Eq(search.Category))
	}

	return filters
}

// openLoanCountStmt counts the open loans of one book.
func (e *Engine) openLoanCountStmt(isbn string) *goqu.SelectDataset {
	return e.builder().
		From(tblLoans).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colBookISBN).Eq(isbn), goqu.C(colReturnDate).IsNull())
}

// lockBookRow reads the copy pool of one book inside a transaction. On
// Postgres the row is locked with FOR UPDATE; sqlite serializes writing
// transactions itself, so a plain read is equivalent there.
func (e *Engine) lockBookRow(ctx context.Context, tx adapters.DBTx, isbn string) (int, error) {
	stmt := e.builder().
		From(tblBooks).
		Select(goqu.C(colTotalCopies)).
		Where(goqu.C(colISBN).Eq(isbn))

	if e.dialect == DialectPostgres {
		stmt = stmt.ForUpdate(exp.Wait)
	}

	rows, err := e.query(ctx, tx, stmt)
	if err != nil {
		return 0, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return 0, fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	totalCopies := 0
	if err := rows.Scan(&totalCopies); err != nil {
		e.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return 0, wrapDBError(err)
	}

	return totalCopies, nil
}
