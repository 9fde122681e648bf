package lending

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

// DefaultLoanPeriod applies when no loan period is configured.
const DefaultLoanPeriod = 14 * 24 * time.Hour

const (
	logMsgBorrowed     = "book borrowed"
	logMsgReturned     = "book returned"
	logMsgBorrowFailed = "borrow rejected"
	logAttrLoanID      = "loan_id"
	logAttrISBN        = "isbn"
	logAttrMemberID    = "member_id"
	logAttrError       = "error"
)

// Store defines the storage operations the Service needs.
type Store interface {
	UserByID(ctx context.Context, id string) (core.User, error)
	ReserveLoan(ctx context.Context, loan core.Loan) error
	CloseLoan(ctx context.Context, id string, returnedAt time.Time) (core.Loan, error)
	LoanByID(ctx context.Context, id string) (storage.LoanRecord, error)
	LoansByMember(ctx context.Context, memberID string) ([]storage.LoanRecord, error)
	OpenLoans(ctx context.Context, search storage.OpenLoanSearch) (storage.LoanPage, error)
	ListLoans(ctx context.Context) ([]storage.LoanRecord, error)
}

// LoanViewPage is one page of the open-loans listing with derived overdue state.
type LoanViewPage struct {
	Items []core.LoanView `json:"borrows"`
	storage.Pagination
}

// Service is the loan manager.
type Service struct {
	store        Store
	loanPeriod   time.Duration
	now          func() time.Time
	logger       storage.Logger
	retryOptions []RetryOption
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLoanPeriod sets the policy duration between borrow and due date.
func WithLoanPeriod(period time.Duration) Option {
	return func(s *Service) {
		if period > 0 {
			s.loanPeriod = period
		}
	}
}

// WithLogger sets the logger for the Service.
func WithLogger(logger storage.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRetryOptions sets a custom retry configuration for transient storage failures.
func WithRetryOptions(options ...RetryOption) Option {
	return func(s *Service) {
		s.retryOptions = options
	}
}

// NewService creates a loan manager with optional configuration.
func NewService(store Store, options ...Option) *Service {
	s := &Service{
		store:      store,
		loanPeriod: DefaultLoanPeriod,
		now:        time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Borrow reserves one copy of a book for a member and records the loan.
// The reservation and the loan insert are a single atomic unit in the store;
// on rejection nothing is written. Transient storage failures are retried -
// re-issuing a borrow is safe because the store simply rejects it once no
// copy is available.
func (s *Service) Borrow(ctx context.Context, memberID string, isbn string) (core.Loan, error) {
	if strings.TrimSpace(isbn) == "" {
		return core.Loan{}, fmt.Errorf("%w: book_isbn is required", core.ErrValidation)
	}

	if strings.TrimSpace(memberID) == "" {
		return core.Loan{}, fmt.Errorf("%w: member id is required", core.ErrValidation)
	}

	// The member must be on file before a copy is reserved; loans reference
	// members without a foreign key, so this is the only existence check.
	if _, err := s.store.UserByID(ctx, memberID); err != nil {
		return core.Loan{}, err
	}

	borrowedAt := s.now().UTC()
	loan := core.Loan{
		ID:         uuid.NewString(),
		BookISBN:   isbn,
		MemberID:   memberID,
		BorrowDate: borrowedAt,
		DueDate:    borrowedAt.Add(s.loanPeriod),
	}

	err := retryWithBackoff(ctx, func(retryCtx context.Context) error {
		return s.store.ReserveLoan(retryCtx, loan)
	}, s.retryOptions...)

	if err != nil {
		s.logInfo(logMsgBorrowFailed, logAttrISBN, isbn, logAttrMemberID, memberID, logAttrError, err.Error())
		return core.Loan{}, err
	}

	s.logInfo(logMsgBorrowed, logAttrLoanID, loan.ID, logAttrISBN, isbn, logAttrMemberID, memberID)

	return loan, nil
}

// Return closes a loan, releasing the copy. Members may only return their own
// loans; staff may return any. Closing an already-closed loan fails with
// core.ErrAlreadyReturned and leaves availability untouched.
func (s *Service) Return(ctx context.Context, actor core.User, loanID string) (core.LoanView, error) {
	record, err := s.store.LoanByID(ctx, loanID)
	if err != nil {
		return core.LoanView{}, err
	}

	if !actor.Role.IsStaff() && record.MemberID != actor.ID {
		return core.LoanView{}, fmt.Errorf("%w: loan belongs to another member", core.ErrForbidden)
	}

	loan, err := s.store.CloseLoan(ctx, loanID, s.now().UTC())
	if err != nil {
		return core.LoanView{}, err
	}

	s.logInfo(logMsgReturned, logAttrLoanID, loanID, logAttrISBN, loan.BookISBN)

	return core.ViewOf(loan, record.BookTitle, record.MemberName, s.now().UTC()), nil
}

// LoanByID returns one loan with derived overdue state.
func (s *Service) LoanByID(ctx context.Context, loanID string) (core.LoanView, error) {
	record, err := s.store.LoanByID(ctx, loanID)
	if err != nil {
		return core.LoanView{}, err
	}

	return s.viewOf(record), nil
}

// MemberLoans returns a member's full borrow history.
func (s *Service) MemberLoans(ctx context.Context, memberID string) ([]core.LoanView, error) {
	records, err := s.store.LoansByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return s.viewsOf(records), nil
}

// OpenLoans returns the paginated librarian view of unreturned loans, with
// overdue state computed per row at query time.
func (s *Service) OpenLoans(ctx context.Context, search storage.OpenLoanSearch) (LoanViewPage, error) {
	page, err := s.store.OpenLoans(ctx, search)
	if err != nil {
		return LoanViewPage{}, err
	}

	return LoanViewPage{
		Items:      s.viewsOf(page.Items),
		Pagination: page.Pagination,
	}, nil
}

// AllLoans returns the complete loan history.
func (s *Service) AllLoans(ctx context.Context) ([]core.LoanView, error) {
	records, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	return s.viewsOf(records), nil
}

func (s *Service) viewOf(record storage.LoanRecord) core.LoanView {
	return core.ViewOf(record.Loan, record.BookTitle, record.MemberName, s.now().UTC())
}

func (s *Service) viewsOf(records []storage.LoanRecord) []core.LoanView {
	now := s.now().UTC()
	views := make([]core.LoanView, 0, len(records))

	for _, record := range records {
		views = append(views, core.ViewOf(record.Loan, record.BookTitle, record.MemberName, now))
	}

	return views
}

func (s *Service) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
