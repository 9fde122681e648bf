package memoryengine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

func Test_ReserveLoan_LastCopyRace_ExactlyOneWinner(t *testing.T) {
	// arrange: one copy, many concurrent borrows
	engine, book := newCatalog(t, 1)
	member := newMember(t, engine, "Ada")

	const attempts = 20

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	// act
	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			now := time.Now().UTC()
			results <- engine.ReserveLoan(context.Background(), core.Loan{
				ID:         uuid.NewString(),
				BookISBN:   book.ISBN,
				MemberID:   member.ID,
				BorrowDate: now,
				DueDate:    now.Add(14 * 24 * time.Hour),
			})
		}()
	}

	wg.Wait()
	close(results)

	// assert: exactly one success, every loser sees out-of-stock
	wins, losses := 0, 0

	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, core.ErrOutOfStock):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)

	details, err := engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 0, details.AvailableCopies)
}

func Test_ReserveLoan_UnknownBook(t *testing.T) {
	engine, _ := newCatalog(t, 1)

	err := engine.ReserveLoan(context.Background(), core.Loan{
		ID:       uuid.NewString(),
		BookISBN: "does-not-exist",
		MemberID: "member",
	})

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_BorrowAndReturn_AvailabilityRoundTrip(t *testing.T) {
	engine, book := newCatalog(t, 2)
	member := newMember(t, engine, "Ada")

	loan := openLoan(t, engine, book.ISBN, member.ID)

	details, err := engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AvailableCopies)

	closed, err := engine.CloseLoan(context.Background(), loan.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())

	details, err = engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 2, details.AvailableCopies)
}

func Test_CloseLoan_Twice_FailsWithoutTouchingAvailability(t *testing.T) {
	engine, book := newCatalog(t, 1)
	member := newMember(t, engine, "Ada")
	loan := openLoan(t, engine, book.ISBN, member.ID)

	_, err := engine.CloseLoan(context.Background(), loan.ID, time.Now().UTC())
	require.NoError(t, err)

	_, err = engine.CloseLoan(context.Background(), loan.ID, time.Now().UTC())
	assert.ErrorIs(t, err, core.ErrAlreadyReturned)

	details, err := engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AvailableCopies)
}

func Test_OpenLoans_FiltersByMemberNameAndExcludesClosed(t *testing.T) {
	// arrange
	engine, book := newCatalog(t, 5)
	ada := newMember(t, engine, "Ada Lovelace")
	grace := newMember(t, engine, "Grace Hopper")

	openLoan(t, engine, book.ISBN, ada.ID)
	openLoan(t, engine, book.ISBN, grace.ID)
	closed := openLoan(t, engine, book.ISBN, ada.ID)

	_, err := engine.CloseLoan(context.Background(), closed.ID, time.Now().UTC())
	require.NoError(t, err)

	// act: open loans only
	page, err := engine.OpenLoans(context.Background(), storage.OpenLoanSearch{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	// act: case-insensitive member name substring
	page, err = engine.OpenLoans(context.Background(), storage.OpenLoanSearch{MemberName: "lovelace"})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ada Lovelace", page.Items[0].MemberName)
	assert.Equal(t, "Dune", page.Items[0].BookTitle)
}

func Test_LoansByMember_NewestFirst(t *testing.T) {
	engine, book := newCatalog(t, 5)
	member := newMember(t, engine, "Ada")

	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.ReserveLoan(context.Background(), core.Loan{
			ID:         fmt.Sprintf("loan-%d", i),
			BookISBN:   book.ISBN,
			MemberID:   member.ID,
			BorrowDate: now.Add(time.Duration(i) * time.Hour),
			DueDate:    now.Add(14 * 24 * time.Hour),
		}))
	}

	records, err := engine.LoansByMember(context.Background(), member.ID)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "loan-2", records[0].ID)
	assert.Equal(t, "loan-0", records[2].ID)
}

func Test_LoanRecord_SurvivesDeletedMember(t *testing.T) {
	engine, book := newCatalog(t, 1)
	member := newMember(t, engine, "Ada")
	loan := openLoan(t, engine, book.ISBN, member.ID)

	_, err := engine.CloseLoan(context.Background(), loan.ID, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, engine.DeleteUser(context.Background(), member.ID))

	record, err := engine.LoanByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, record.MemberID)
	assert.Empty(t, record.MemberName)
}
