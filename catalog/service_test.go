package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/catalog"
	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/memoryengine"
)

func newCatalogService(t *testing.T) (*catalog.Service, *memoryengine.Engine) {
	t.Helper()

	engine := memoryengine.New()

	return catalog.NewService(engine), engine
}

func Test_CreateBook_DefaultsToOneCopy(t *testing.T) {
	service, engine := newCatalogService(t)

	author, err := engine.InsertAuthor(context.Background(), "Jane Austen")
	require.NoError(t, err)
	category, err := engine.InsertCategory(context.Background(), "Classic")
	require.NoError(t, err)

	details, err := service.CreateBook(context.Background(), core.Book{
		ISBN:       "9780141439518",
		Title:      "Pride and Prejudice",
		AuthorID:   author.ID,
		CategoryID: category.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, details.TotalCopies)
	assert.Equal(t, 1, details.AvailableCopies)
	assert.Equal(t, "Jane Austen", details.Author)
}

func Test_CreateBook_ValidatesBeforeWriting(t *testing.T) {
	service, _ := newCatalogService(t)

	_, err := service.CreateBook(context.Background(), core.Book{Title: "No ISBN"})

	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_Import_CreatesAuthorAndCategoryByName(t *testing.T) {
	// arrange
	service, engine := newCatalogService(t)

	record := catalog.ImportRecord{
		ISBN:        "9780451524935",
		Title:       "1984",
		Author:      "George Orwell",
		Category:    "Dystopian",
		TotalCopies: 2,
	}

	// act
	details, err := service.Import(context.Background(), record)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "George Orwell", details.Author)
	assert.Equal(t, "Dystopian", details.Category)
	assert.Equal(t, 2, details.AvailableCopies)

	authors, err := engine.ListAuthors(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 1)
}

func Test_Import_AttachesToExistingMetadata(t *testing.T) {
	service, engine := newCatalogService(t)

	existing, err := engine.InsertAuthor(context.Background(), "George Orwell")
	require.NoError(t, err)

	_, err = service.Import(context.Background(), catalog.ImportRecord{
		ISBN:     "9780451524935",
		Title:    "1984",
		Author:   "George Orwell",
		Category: "Dystopian",
	})
	require.NoError(t, err)

	_, err = service.Import(context.Background(), catalog.ImportRecord{
		ISBN:     "9780141187761",
		Title:    "Animal Farm",
		Author:   "George Orwell",
		Category: "Satire",
	})
	require.NoError(t, err)

	author, err := engine.AuthorByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, author.BooksCount, "both imports attach to the one existing author")

	authors, err := engine.ListAuthors(context.Background())
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func Test_Import_RejectsIncompleteRecords(t *testing.T) {
	service, _ := newCatalogService(t)

	testCases := []struct {
		name   string
		record catalog.ImportRecord
	}{
		{name: "missing isbn", record: catalog.ImportRecord{Title: "x", Author: "a", Category: "c"}},
		{name: "missing title", record: catalog.ImportRecord{ISBN: "1", Author: "a", Category: "c"}},
		{name: "missing author", record: catalog.ImportRecord{ISBN: "1", Title: "x", Category: "c"}},
		{name: "missing category", record: catalog.ImportRecord{ISBN: "1", Title: "x", Author: "a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Import(context.Background(), tc.record)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func Test_Search_DelegatesFiltersToTheStore(t *testing.T) {
	service, _ := newCatalogService(t)

	_, err := service.Import(context.Background(), catalog.ImportRecord{
		ISBN: "1", Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction",
	})
	require.NoError(t, err)

	page, err := service.Search(context.Background(), storage.BookSearch{Title: "dune"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = service.Search(context.Background(), storage.BookSearch{Title: "whale"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
