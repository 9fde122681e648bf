package core

import "time"

// Loan is a borrow record for one copy of a book. A loan is open while
// ReturnDate is nil; closed loans are kept forever for borrow history and
// overdue reporting, never deleted.
type Loan struct {
	ID         string     `json:"id"`
	BookISBN   string     `json:"book_isbn"`
	MemberID   string     `json:"member_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
}

// IsOpen reports whether the copy is still out.
func (l Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsOverdue reports whether the loan is open past its due date. Overdue state
// is derived at read time and never persisted, so it cannot go stale.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.ReturnDate == nil && now.After(l.DueDate)
}

// DaysOverdue returns how many full days the loan is past due, 0 when it is
// not overdue.
func (l Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}

	return int(now.Sub(l.DueDate).Hours() / 24)
}

// LoanView is a Loan joined with display data and derived overdue state, as
// the borrow listings report it.
type LoanView struct {
	Loan
	IsOverdue   bool   `json:"is_overdue"`
	DaysOverdue int    `json:"days_overdue"`
	BookTitle   string `json:"book_title"`
	MemberName  string `json:"member_name"`
}

// ViewOf builds the LoanView for a loan at the given instant.
func ViewOf(loan Loan, bookTitle string, memberName string, now time.Time) LoanView {
	return LoanView{
		Loan:        loan,
		IsOverdue:   loan.IsOverdue(now),
		DaysOverdue: loan.DaysOverdue(now),
		BookTitle:   bookTitle,
		MemberName:  memberName,
	}
}
