package memoryengine_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/memoryengine"
)

func Test_InsertBook_RejectsDuplicateISBN(t *testing.T) {
	engine, book := newCatalog(t, 2)

	_, err := engine.InsertBook(context.Background(), book)

	assert.ErrorIs(t, err, core.ErrConflict)
}

func Test_InsertBook_RejectsUnknownAuthorAndCategory(t *testing.T) {
	engine, book := newCatalog(t, 1)

	unknownAuthor := book
	unknownAuthor.ISBN = "9999999999999"
	unknownAuthor.AuthorID = 42

	_, err := engine.InsertBook(context.Background(), unknownAuthor)
	assert.ErrorIs(t, err, core.ErrNotFound)

	unknownCategory := book
	unknownCategory.ISBN = "9999999999999"
	unknownCategory.CategoryID = 42

	_, err = engine.InsertBook(context.Background(), unknownCategory)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_UpdateBook_CannotShrinkBelowOpenLoans(t *testing.T) {
	// arrange
	engine, book := newCatalog(t, 3)
	member := newMember(t, engine, "Ada")
	openLoan(t, engine, book.ISBN, member.ID)
	openLoan(t, engine, book.ISBN, member.ID)

	// act
	one := 1
	_, err := engine.UpdateBook(context.Background(), book.ISBN, storage.BookUpdate{TotalCopies: &one})

	// assert
	assert.ErrorIs(t, err, core.ErrConflict)

	two := 2
	details, err := engine.UpdateBook(context.Background(), book.ISBN, storage.BookUpdate{TotalCopies: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, details.TotalCopies)
	assert.Equal(t, 0, details.AvailableCopies)
}

func Test_UpdateBook_ReturnsTheUpdatedEntity(t *testing.T) {
	engine, book := newCatalog(t, 2)

	title := "Dune Messiah"
	details, err := engine.UpdateBook(context.Background(), book.ISBN, storage.BookUpdate{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", details.Title)
	assert.Equal(t, "Frank Herbert", details.Author)
	assert.Equal(t, 2, details.AvailableCopies)
}

func Test_DeleteBook_BlockedByOpenLoans_AllowedAfterReturn(t *testing.T) {
	// arrange
	engine, book := newCatalog(t, 1)
	member := newMember(t, engine, "Ada")
	loan := openLoan(t, engine, book.ISBN, member.ID)

	// act + assert: open loan blocks deletion
	err := engine.DeleteBook(context.Background(), book.ISBN)
	assert.ErrorIs(t, err, core.ErrConflict)

	// closed loans are history, they do not block
	_, err = engine.CloseLoan(context.Background(), loan.ID, loan.DueDate)
	require.NoError(t, err)

	require.NoError(t, engine.DeleteBook(context.Background(), book.ISBN))

	_, err = engine.BookByISBN(context.Background(), book.ISBN)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// the loan record survives the book
	record, err := engine.LoanByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ISBN, record.BookISBN)
}

func Test_SearchBooks_FiltersAreConjunctive(t *testing.T) {
	engine := memoryengine.New()

	herbert, err := engine.InsertAuthor(context.Background(), "Frank Herbert")
	require.NoError(t, err)
	orwell, err := engine.InsertAuthor(context.Background(), "George Orwell")
	require.NoError(t, err)

	scifi, err := engine.InsertCategory(context.Background(), "Science Fiction")
	require.NoError(t, err)
	dystopia, err := engine.InsertCategory(context.Background(), "Dystopian")
	require.NoError(t, err)

	for _, book := range []core.Book{
		{ISBN: "1", Title: "Dune", AuthorID: herbert.ID, CategoryID: scifi.ID, TotalCopies: 1},
		{ISBN: "2", Title: "Dune Messiah", AuthorID: herbert.ID, CategoryID: scifi.ID, TotalCopies: 1},
		{ISBN: "3", Title: "1984", AuthorID: orwell.ID, CategoryID: dystopia.ID, TotalCopies: 1},
	} {
		_, err := engine.InsertBook(context.Background(), book)
		require.NoError(t, err)
	}

	page, err := engine.SearchBooks(context.Background(), storage.BookSearch{
		Title:  "dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = engine.SearchBooks(context.Background(), storage.BookSearch{
		Title:    "dune",
		Category: "Dystopian",
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
}

func Test_SearchBooks_PaginatesDeterministically(t *testing.T) {
	// arrange: 25 books, 10 per page
	engine := memoryengine.New()

	author, err := engine.InsertAuthor(context.Background(), "Prolific Author")
	require.NoError(t, err)
	category, err := engine.InsertCategory(context.Background(), "Fiction")
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		_, err := engine.InsertBook(context.Background(), core.Book{
			ISBN:        fmt.Sprintf("isbn-%02d", i),
			Title:       fmt.Sprintf("Book %02d", i),
			AuthorID:    author.ID,
			CategoryID:  category.ID,
			TotalCopies: 1,
		})
		require.NoError(t, err)
	}

	expectedSizes := map[int]int{1: 10, 2: 10, 3: 5, 4: 0}

	for pageNo, expectedSize := range expectedSizes {
		page, err := engine.SearchBooks(context.Background(), storage.BookSearch{Page: pageNo, PerPage: 10})
		require.NoError(t, err)

		assert.Len(t, page.Items, expectedSize, "page %d", pageNo)
		assert.Equal(t, 25, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, pageNo, page.Page)
	}

	// stable ordering: page 1 starts at the lowest title
	page, err := engine.SearchBooks(context.Background(), storage.BookSearch{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, "Book 00", page.Items[0].Title)
}
