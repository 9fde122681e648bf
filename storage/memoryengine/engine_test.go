package memoryengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage/memoryengine"
)

// newCatalog creates an engine holding one author, one category and one book
// with the given copy pool.
func newCatalog(t *testing.T, totalCopies int) (*memoryengine.Engine, core.Book) {
	t.Helper()

	engine := memoryengine.New()

	author, err := engine.InsertAuthor(context.Background(), "Frank Herbert")
	require.NoError(t, err)

	category, err := engine.InsertCategory(context.Background(), "Science Fiction")
	require.NoError(t, err)

	book := core.Book{
		ISBN:        "9780441172719",
		Title:       "Dune",
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		TotalCopies: totalCopies,
	}

	_, err = engine.InsertBook(context.Background(), book)
	require.NoError(t, err)

	return engine, book
}

func newMember(t *testing.T, engine *memoryengine.Engine, name string) core.User {
	t.Helper()

	user, err := engine.InsertUser(context.Background(), core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "irrelevant",
		Role:         core.RoleMember,
	})
	require.NoError(t, err)

	return user
}

func openLoan(t *testing.T, engine *memoryengine.Engine, isbn string, memberID string) core.Loan {
	t.Helper()

	now := time.Now().UTC()
	loan := core.Loan{
		ID:         uuid.NewString(),
		BookISBN:   isbn,
		MemberID:   memberID,
		BorrowDate: now,
		DueDate:    now.Add(14 * 24 * time.Hour),
	}

	require.NoError(t, engine.ReserveLoan(context.Background(), loan))

	return loan
}
