package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/librarium/librarium/core"
)

func Test_Loan_OverdueState_IsDerivedFromDueDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	openOnTime := core.Loan{DueDate: now.Add(24 * time.Hour)}
	assert.False(t, openOnTime.IsOverdue(now))
	assert.Equal(t, 0, openOnTime.DaysOverdue(now))

	openLate := core.Loan{DueDate: now.Add(-49 * time.Hour)}
	assert.True(t, openLate.IsOverdue(now))
	assert.Equal(t, 2, openLate.DaysOverdue(now))
}

func Test_Loan_ClosedLoanIsNeverOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	returned := now.Add(-time.Hour)

	loan := core.Loan{
		DueDate:    now.Add(-72 * time.Hour),
		ReturnDate: &returned,
	}

	assert.False(t, loan.IsOpen())
	assert.False(t, loan.IsOverdue(now))
	assert.Equal(t, 0, loan.DaysOverdue(now))
}

func Test_ViewOf_ComputesOverdueAtTheGivenInstant(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	loan := core.Loan{ID: "loan-1", DueDate: now.Add(-25 * time.Hour)}

	view := core.ViewOf(loan, "Dune", "Paul", now)

	assert.True(t, view.IsOverdue)
	assert.Equal(t, 1, view.DaysOverdue)
	assert.Equal(t, "Dune", view.BookTitle)
	assert.Equal(t, "Paul", view.MemberName)
}
