package storage

import (
	"context"
	"time"

	"github.com/librarium/librarium/core"
)

// Logger interface for operational logging from storage engines.
// A nil logger disables logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// BookUpdate carries a selective update of a book; nil fields are untouched.
type BookUpdate struct {
	Title       *string
	AuthorID    *int64
	CategoryID  *int64
	TotalCopies *int
	Cover       *string
	Description *string
}

// UserUpdate carries a selective update of a user; nil fields are untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	Role         *core.Role
	PasswordHash *string
}

// LoanRecord is a loan joined with the display names the listings need.
// Overdue state is not included - it is derived by the caller at read time.
type LoanRecord struct {
	core.Loan
	BookTitle  string
	MemberName string
}

// BookStore persists catalog titles and serves the joined read path.
type BookStore interface {
	// InsertBook creates a book; core.ErrConflict if the ISBN exists.
	InsertBook(ctx context.Context, book core.Book) (core.BookDetails, error)

	// UpdateBook applies a selective update. Shrinking TotalCopies below the
	// current open-loan count fails with core.ErrConflict.
	UpdateBook(ctx context.Context, isbn string, update BookUpdate) (core.BookDetails, error)

	// DeleteBook removes a book; core.ErrConflict while open loans reference it.
	DeleteBook(ctx context.Context, isbn string) error

	BookByISBN(ctx context.Context, isbn string) (core.BookDetails, error)

	// SearchBooks serves the paginated, filtered catalog read path. Availability
	// in the result is consistent with the open loans at query time.
	SearchBooks(ctx context.Context, search BookSearch) (BookPage, error)
}

// AuthorStore persists authors with a unique-name guard.
type AuthorStore interface {
	InsertAuthor(ctx context.Context, name string) (core.Author, error)
	UpdateAuthor(ctx context.Context, id int64, name string) (core.Author, error)

	// DeleteAuthor fails with core.ErrConflict while the author owns books.
	DeleteAuthor(ctx context.Context, id int64) error

	AuthorByID(ctx context.Context, id int64) (core.Author, error)
	ListAuthors(ctx context.Context) ([]core.Author, error)

	// EnsureAuthor returns the author with the given name, creating it if absent.
	EnsureAuthor(ctx context.Context, name string) (core.Author, error)
}

// CategoryStore persists categories with a unique-name guard.
type CategoryStore interface {
	InsertCategory(ctx context.Context, name string) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error)

	// DeleteCategory fails with core.ErrConflict while the category owns books.
	DeleteCategory(ctx context.Context, id int64) error

	CategoryByID(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)

	// EnsureCategory returns the category with the given name, creating it if absent.
	EnsureCategory(ctx context.Context, name string) (core.Category, error)
}

// LoanStore persists loans and implements the availability ledger.
type LoanStore interface {
	// ReserveLoan atomically claims one available copy and inserts the loan.
	// Two concurrent reservations for the last copy yield exactly one success;
	// the loser gets core.ErrOutOfStock. core.ErrNotFound if the book does not
	// exist. The check and the insert are one unit - no partial state survives
	// a failure or a cancellation.
	ReserveLoan(ctx context.Context, loan core.Loan) error

	// CloseLoan sets the return date and releases the copy. core.ErrNotFound
	// for unknown ids, core.ErrAlreadyReturned if the loan is already closed.
	CloseLoan(ctx context.Context, id string, returnedAt time.Time) (core.Loan, error)

	LoanByID(ctx context.Context, id string) (LoanRecord, error)
	LoansByMember(ctx context.Context, memberID string) ([]LoanRecord, error)

	// OpenLoans serves the librarian view of unreturned loans, optionally
	// filtered by member name, paginated.
	OpenLoans(ctx context.Context, search OpenLoanSearch) (LoanPage, error)

	ListLoans(ctx context.Context) ([]LoanRecord, error)
}

// UserStore persists user accounts with a unique-email guard.
type UserStore interface {
	InsertUser(ctx context.Context, user core.User) (core.User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (core.User, error)
	DeleteUser(ctx context.Context, id string) error
	UserByID(ctx context.Context, id string) (core.User, error)
	UserByEmail(ctx context.Context, email string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// Store aggregates all store contracts an engine must provide.
type Store interface {
	BookStore
	AuthorStore
	CategoryStore
	LoanStore
	UserStore
}
