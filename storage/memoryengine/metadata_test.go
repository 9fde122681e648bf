package memoryengine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage/memoryengine"
)

func Test_Authors_UniqueNameGuard(t *testing.T) {
	engine := memoryengine.New()

	_, err := engine.InsertAuthor(context.Background(), "Jane Austen")
	require.NoError(t, err)

	_, err = engine.InsertAuthor(context.Background(), "Jane Austen")
	assert.ErrorIs(t, err, core.ErrConflict)

	other, err := engine.InsertAuthor(context.Background(), "Mary Shelley")
	require.NoError(t, err)

	_, err = engine.UpdateAuthor(context.Background(), other.ID, "Jane Austen")
	assert.ErrorIs(t, err, core.ErrConflict)
}

func Test_DeleteAuthor_BlockedWhileBooksReferenceIt(t *testing.T) {
	engine, book := newCatalog(t, 1)

	err := engine.DeleteAuthor(context.Background(), book.AuthorID)
	assert.ErrorIs(t, err, core.ErrConflict)

	require.NoError(t, engine.DeleteBook(context.Background(), book.ISBN))
	require.NoError(t, engine.DeleteAuthor(context.Background(), book.AuthorID))

	_, err = engine.AuthorByID(context.Background(), book.AuthorID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_DeleteCategory_BlockedWhileBooksReferenceIt(t *testing.T) {
	engine, book := newCatalog(t, 1)

	err := engine.DeleteCategory(context.Background(), book.CategoryID)
	assert.ErrorIs(t, err, core.ErrConflict)
}

func Test_EnsureAuthor_CreateOrAttach(t *testing.T) {
	engine := memoryengine.New()

	created, err := engine.EnsureAuthor(context.Background(), "Ursula K. Le Guin")
	require.NoError(t, err)

	attached, err := engine.EnsureAuthor(context.Background(), "Ursula K. Le Guin")
	require.NoError(t, err)

	assert.Equal(t, created.ID, attached.ID)

	authors, err := engine.ListAuthors(context.Background())
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func Test_EnsureAuthor_ConcurrentEnsuresConvergeOnOneAuthor(t *testing.T) {
	// arrange
	engine := memoryengine.New()

	const workers = 20

	var wg sync.WaitGroup
	ids := make(chan int64, workers)

	// act: everyone ensures the same name at once
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			author, err := engine.EnsureAuthor(context.Background(), "Octavia Butler")
			assert.NoError(t, err)
			ids <- author.ID
		}()
	}

	wg.Wait()
	close(ids)

	// assert: no racer saw a conflict and all got the same author
	first := int64(0)
	for id := range ids {
		if first == 0 {
			first = id
		}

		assert.Equal(t, first, id)
	}

	authors, err := engine.ListAuthors(context.Background())
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func Test_AuthorBooksCount_IsDerived(t *testing.T) {
	engine, book := newCatalog(t, 1)

	author, err := engine.AuthorByID(context.Background(), book.AuthorID)
	require.NoError(t, err)
	assert.Equal(t, 1, author.BooksCount)

	require.NoError(t, engine.DeleteBook(context.Background(), book.ISBN))

	author, err = engine.AuthorByID(context.Background(), book.AuthorID)
	require.NoError(t, err)
	assert.Equal(t, 0, author.BooksCount)
}

func Test_Users_UniqueEmailGuard(t *testing.T) {
	engine := memoryengine.New()

	first := core.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: core.RoleMember}
	_, err := engine.InsertUser(context.Background(), first)
	require.NoError(t, err)

	second := core.User{ID: "u2", Name: "Other Ada", Email: "ada@example.com", Role: core.RoleMember}
	_, err = engine.InsertUser(context.Background(), second)
	assert.ErrorIs(t, err, core.ErrConflict)
}
