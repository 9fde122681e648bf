package lending_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/lending"
	"github.com/librarium/librarium/storage"
	"github.com/librarium/librarium/storage/memoryengine"
)

func newLendingFixture(t *testing.T, totalCopies int) (*memoryengine.Engine, core.User, core.Book) {
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

	member, err := engine.InsertUser(context.Background(), core.User{
		ID:    uuid.NewString(),
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Role:  core.RoleMember,
	})
	require.NoError(t, err)

	return engine, member, book
}

func Test_Borrow_SetsDueDateFromLoanPeriod(t *testing.T) {
	// arrange
	engine, member, book := newLendingFixture(t, 1)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	service := lending.NewService(engine,
		lending.WithLoanPeriod(7*24*time.Hour),
		lending.WithClock(func() time.Time { return now }))

	// act
	loan, err := service.Borrow(context.Background(), member.ID, book.ISBN)

	// assert
	require.NoError(t, err)
	assert.Equal(t, now, loan.BorrowDate)
	assert.Equal(t, now.Add(7*24*time.Hour), loan.DueDate)
	assert.True(t, loan.IsOpen())
}

func Test_Borrow_OutOfStock_FailsFastWithoutPartialState(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	_, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	_, err = service.Borrow(context.Background(), member.ID, book.ISBN)
	assert.ErrorIs(t, err, core.ErrOutOfStock)

	records, err := engine.LoansByMember(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1, "the rejected borrow must not leave a loan behind")
}

func Test_Borrow_UnknownMemberLeavesAvailabilityUntouched(t *testing.T) {
	engine, _, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	_, err := service.Borrow(context.Background(), "no-such-member", book.ISBN)
	assert.ErrorIs(t, err, core.ErrNotFound)

	details, err := engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AvailableCopies, "a rejected borrow must not consume a copy")
}

func Test_Borrow_ValidatesInput(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	_, err := service.Borrow(context.Background(), member.ID, "  ")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = service.Borrow(context.Background(), "", book.ISBN)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_Return_MemberReturnsOwnLoan(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	loan, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	view, err := service.Return(context.Background(), member, loan.ID)
	require.NoError(t, err)

	assert.False(t, view.IsOpen())
	assert.Equal(t, "Dune", view.BookTitle)

	details, err := engine.BookByISBN(context.Background(), book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AvailableCopies)
}

func Test_Return_AnotherMembersLoanIsForbidden_StaffMayReturnAny(t *testing.T) {
	engine, member, book := newLendingFixture(t, 2)
	service := lending.NewService(engine)

	loan, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	stranger := core.User{ID: uuid.NewString(), Role: core.RoleMember}
	_, err = service.Return(context.Background(), stranger, loan.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	librarian := core.User{ID: uuid.NewString(), Role: core.RoleLibrarian}
	_, err = service.Return(context.Background(), librarian, loan.ID)
	assert.NoError(t, err)
}

func Test_Return_Twice_FailsWithAlreadyReturned(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	loan, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	_, err = service.Return(context.Background(), member, loan.ID)
	require.NoError(t, err)

	_, err = service.Return(context.Background(), member, loan.ID)
	assert.ErrorIs(t, err, core.ErrAlreadyReturned)
}

func Test_Borrow_TwoCopiesThreeMembers_CirculationScenario(t *testing.T) {
	// arrange: two copies, three members competing for them
	engine, memberA, book := newLendingFixture(t, 2)
	service := lending.NewService(engine)

	memberB, err := engine.InsertUser(context.Background(), core.User{
		ID: uuid.NewString(), Name: "Grace Hopper", Email: "grace@example.com", Role: core.RoleMember,
	})
	require.NoError(t, err)

	memberC, err := engine.InsertUser(context.Background(), core.User{
		ID: uuid.NewString(), Name: "Edsger Dijkstra", Email: "edsger@example.com", Role: core.RoleMember,
	})
	require.NoError(t, err)

	availability := func() int {
		details, detailsErr := engine.BookByISBN(context.Background(), book.ISBN)
		require.NoError(t, detailsErr)
		return details.AvailableCopies
	}

	require.Equal(t, 2, availability())

	// act + assert: both copies go out, the third borrow is rejected
	loanA, err := service.Borrow(context.Background(), memberA.ID, book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 1, availability())

	_, err = service.Borrow(context.Background(), memberB.ID, book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 0, availability())

	_, err = service.Borrow(context.Background(), memberC.ID, book.ISBN)
	assert.ErrorIs(t, err, core.ErrOutOfStock)

	// the first return frees a copy for the waiting member
	_, err = service.Return(context.Background(), memberA, loanA.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, availability())

	_, err = service.Borrow(context.Background(), memberC.ID, book.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 0, availability())
}

func Test_OpenLoans_OverdueComputedPerRow(t *testing.T) {
	// arrange: one loan overdue by 3 days, one on time
	engine, member, book := newLendingFixture(t, 2)

	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-20 * 24 * time.Hour)

	service := lending.NewService(engine,
		lending.WithLoanPeriod(17*24*time.Hour),
		lending.WithClock(func() time.Time { return clock }))

	_, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	clock = now.Add(-time.Hour)
	_, err = service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	clock = now

	// act
	page, err := service.OpenLoans(context.Background(), storage.OpenLoanSearch{})

	// assert: newest first, overdue state derived at read time
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.False(t, page.Items[0].IsOverdue)
	assert.True(t, page.Items[1].IsOverdue)
	assert.Equal(t, 3, page.Items[1].DaysOverdue)
}

// flakyStore fails reservation with a transient error a fixed number of
// times before delegating to the real store.
type flakyStore struct {
	lending.Store
	failures int
}

func (s *flakyStore) ReserveLoan(ctx context.Context, loan core.Loan) error {
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("%w: connection reset", core.ErrUnavailable)
	}

	return s.Store.ReserveLoan(ctx, loan)
}

func Test_Borrow_RetriesTransientFailures(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)

	store := &flakyStore{Store: engine, failures: 2}
	service := lending.NewService(store,
		lending.WithRetryOptions(lending.WithMaxAttempts(4), lending.WithBaseDelay(time.Millisecond)))

	loan, err := service.Borrow(context.Background(), member.ID, book.ISBN)

	require.NoError(t, err)
	assert.True(t, loan.IsOpen())
}

func Test_Borrow_DoesNotRetryBusinessRejections(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)
	service := lending.NewService(engine)

	_, err := service.Borrow(context.Background(), member.ID, book.ISBN)
	require.NoError(t, err)

	attempts := 0
	counting := &countingStore{Store: engine, attempts: &attempts}

	retrying := lending.NewService(counting,
		lending.WithRetryOptions(lending.WithMaxAttempts(4), lending.WithBaseDelay(time.Millisecond)))

	_, err = retrying.Borrow(context.Background(), member.ID, book.ISBN)

	assert.ErrorIs(t, err, core.ErrOutOfStock)
	assert.Equal(t, 1, attempts, "out-of-stock must fail fast, not retry")
}

type countingStore struct {
	lending.Store
	attempts *int
}

func (s *countingStore) ReserveLoan(ctx context.Context, loan core.Loan) error {
	*s.attempts++
	return s.Store.ReserveLoan(ctx, loan)
}

func Test_Borrow_GivesUpAfterMaxAttempts(t *testing.T) {
	engine, member, book := newLendingFixture(t, 1)

	store := &flakyStore{Store: engine, failures: 10}
	service := lending.NewService(store,
		lending.WithRetryOptions(lending.WithMaxAttempts(3), lending.WithBaseDelay(time.Millisecond)))

	_, err := service.Borrow(context.Background(), member.ID, book.ISBN)

	assert.True(t, errors.Is(err, core.ErrUnavailable))
}
