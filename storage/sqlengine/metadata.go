package sqlengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/librarium/librarium/core"
)

// metadataRow is the shared shape of authors and categories: an id, a unique
// name and the count of books referencing the row.
type metadataRow struct {
	ID         int64
	Name       string
	BooksCount int
}

// metadataTable parameterizes the shared author/category statements.
type metadataTable struct {
	table    string
	booksFK  string
	singular string
}

var (
	authorsTable    = metadataTable{table: tblAuthors, booksFK: colAuthorID, singular: "author"}
	categoriesTable = metadataTable{table: tblCategories, booksFK: colCategoryID, singular: "category"}
)

// booksCountExpr counts the books referencing the outer metadata row.
func (t metadataTable) booksCountExpr() exp.LiteralExpression {
	return goqu.L(fmt.Sprintf(
		"(SELECT COUNT(*) FROM books WHERE books.%s = %s.id)", t.booksFK, t.table))
}

func (e *Engine) metadataSelect(t metadataTable) *goqu.SelectDataset {
	return e.builder().
		From(t.table).
		Select(goqu.C(colID), goqu.C(colName), t.booksCountExpr().As("books_count"))
}

func (e *Engine) insertMetadata(ctx context.Context, t metadataTable, name string) (metadataRow, error) {
	if name == "" {
		return metadataRow{}, fmt.Errorf("%w: %s name must not be empty", core.ErrValidation, t.singular)
	}

	stmt := e.builder().Insert(t.table).Rows(goqu.Record{colName: name})

	if _, err := e.exec(ctx, e.db, stmt); err != nil {
		if isConflict(err) {
			return metadataRow{}, fmt.Errorf("%w: %s %q already exists", core.ErrConflict, t.singular, name)
		}

		return metadataRow{}, err
	}

	return e.metadataByName(ctx, t, name)
}

func (e *Engine) updateMetadata(ctx context.Context, t metadataTable, id int64, name string) (metadataRow, error) {
	if name == "" {
		return metadataRow{}, fmt.Errorf("%w: %s name must not be empty", core.ErrValidation, t.singular)
	}

	stmt := e.builder().
		Update(t.table).
		Set(goqu.Record{colName: name}).
		Where(goqu.C(colID).Eq(id))

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		if isConflict(err) {
			return metadataRow{}, fmt.Errorf("%w: %s %q already exists", core.ErrConflict, t.singular, name)
		}

		return metadataRow{}, err
	}

	if affected == 0 {
		return metadataRow{}, fmt.Errorf("%w: %s %d", core.ErrNotFound, t.singular, id)
	}

	return e.metadataByID(ctx, t, id)
}

// deleteMetadata removes a row unless books still reference it. The guard is
// part of the delete statement, so a concurrent book insert cannot slip
// between a check and the delete.
func (e *Engine) deleteMetadata(ctx context.Context, t metadataTable, id int64) error {
	stmt := e.builder().
		Delete(t.table).
		Where(
			goqu.C(colID).Eq(id),
			goqu.L(fmt.Sprintf(
				"NOT EXISTS (SELECT 1 FROM books WHERE books.%s = ?)", t.booksFK), id),
		)

	affected, err := e.exec(ctx, e.db, stmt)
	if err != nil {
		return err
	}

	if affected > 0 {
		return nil
	}

	if _, err := e.metadataByID(ctx, t, id); err != nil {
		return err
	}

	return fmt.Errorf("%w: %s still has books", core.ErrConflict, t.singular)
}

func (e *Engine) metadataByID(ctx context.Context, t metadataTable, id int64) (metadataRow, error) {
	rows, err := e.query(ctx, e.db, e.metadataSelect(t).Where(goqu.C(colID).Eq(id)))
	if err != nil {
		return metadataRow{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return metadataRow{}, fmt.Errorf("%w: %s %d", core.ErrNotFound, t.singular, id)
	}

	return e.scanMetadataRow(rows)
}

func (e *Engine) metadataByName(ctx context.Context, t metadataTable, name string) (metadataRow, error) {
	rows, err := e.query(ctx, e.db, e.metadataSelect(t).Where(goqu.C(colName).Eq(name)))
	if err != nil {
		return metadataRow{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return metadataRow{}, fmt.Errorf("%w: %s %q", core.ErrNotFound, t.singular, name)
	}

	return e.scanMetadataRow(rows)
}

func (e *Engine) listMetadata(ctx context.Context, t metadataTable) ([]metadataRow, error) {
	rows, err := e.query(ctx, e.db, e.metadataSelect(t).Order(goqu.C(colName).Asc()))
	if err != nil {
		return nil, err
	}
	defer e.closeRows(rows)

	list := make([]metadataRow, 0)

	for rows.Next() {
		row, scanErr := e.scanMetadataRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		list = append(list, row)
	}

	return list, nil
}

// ensureMetadata returns the row with the given name, creating it if absent.
// A concurrent create of the same name is resolved by re-reading after the
// unique constraint rejects the duplicate insert.
func (e *Engine) ensureMetadata(ctx context.Context, t metadataTable, name string) (metadataRow, error) {
	row, err := e.metadataByName(ctx, t, name)
	if err == nil {
		return row, nil
	}

	if !errors.Is(err, core.ErrNotFound) {
		return metadataRow{}, err
	}

	row, err = e.insertMetadata(ctx, t, name)
	if err == nil {
		return row, nil
	}

	if errors.Is(err, core.ErrConflict) {
		return e.metadataByName(ctx, t, name)
	}

	return metadataRow{}, err
}

func (e *Engine) scanMetadataRow(rows interface{ Scan(dest ...any) error }) (metadataRow, error) {
	var row metadataRow

	if err := rows.Scan(&row.ID, &row.Name, &row.BooksCount); err != nil {
		e.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return metadataRow{}, wrapDBError(err)
	}

	return row, nil
}

// InsertAuthor creates an author; core.ErrConflict if the name is taken.
func (e *Engine) InsertAuthor(ctx context.Context, name string) (core.Author, error) {
	row, err := e.insertMetadata(ctx, authorsTable, name)

	return core.Author(row), err
}

// UpdateAuthor renames an author; core.ErrConflict if the name is taken.
func (e *Engine) UpdateAuthor(ctx context.Context, id int64, name string) (core.Author, error) {
	row, err := e.updateMetadata(ctx, authorsTable, id, name)

	return core.Author(row), err
}

// DeleteAuthor removes an author; core.ErrConflict while it owns books.
func (e *Engine) DeleteAuthor(ctx context.Context, id int64) error {
	return e.deleteMetadata(ctx, authorsTable, id)
}

// AuthorByID returns an author with its book count.
func (e *Engine) AuthorByID(ctx context.Context, id int64) (core.Author, error) {
	row, err := e.metadataByID(ctx, authorsTable, id)

	return core.Author(row), err
}

// ListAuthors returns all authors ordered by name.
func (e *Engine) ListAuthors(ctx context.Context) ([]core.Author, error) {
	rows, err := e.listMetadata(ctx, authorsTable)
	if err != nil {
		return nil, err
	}

	authors := make([]core.Author, len(rows))
	for i, row := range rows {
		authors[i] = core.Author(row)
	}

	return authors, nil
}

// EnsureAuthor returns the author with the given name, creating it if absent.
func (e *Engine) EnsureAuthor(ctx context.Context, name string) (core.Author, error) {
	row, err := e.ensureMetadata(ctx, authorsTable, name)

	return core.Author(row), err
}

// InsertCategory creates a category; core.ErrConflict if the name is taken.
func (e *Engine) InsertCategory(ctx context.Context, name string) (core.Category, error) {
	row, err := e.insertMetadata(ctx, categoriesTable, name)

	return core.Category(row), err
}

// UpdateCategory renames a category; core.ErrConflict if the name is taken.
func (e *Engine) UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	row, err := e.updateMetadata(ctx, categoriesTable, id, name)

	return core.Category(row), err
}

// DeleteCategory removes a category; core.ErrConflict while it owns books.
func (e *Engine) DeleteCategory(ctx context.Context, id int64) error {
	return e.deleteMetadata(ctx, categoriesTable, id)
}

// CategoryByID returns a category with its book count.
func (e *Engine) CategoryByID(ctx context.Context, id int64) (core.Category, error) {
	row, err := e.metadataByID(ctx, categoriesTable, id)

	return core.Category(row), err
}

// ListCategories returns all categories ordered by name.
func (e *Engine) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := e.listMetadata(ctx, categoriesTable)
	if err != nil {
		return nil, err
	}

	categories := make([]core.Category, len(rows))
	for i, row := range rows {
		categories[i] = core.Category(row)
	}

	return categories, nil
}

// EnsureCategory returns the category with the given name, creating it if absent.
func (e *Engine) EnsureCategory(ctx context.Context, name string) (core.Category, error) {
	row, err := e.ensureMetadata(ctx, categoriesTable, name)

	return core.Category(row), err
}
