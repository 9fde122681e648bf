package catalog

import (
	"context"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

const (
	logMsgBookCreated = "book created"
	logMsgBookUpdated = "book updated"
	logMsgBookDeleted = "book deleted"
	logAttrISBN       = "isbn"
	logAttrTitle      = "title"
)

// Store defines the storage operations the Service needs.
type Store interface {
	storage.BookStore
	storage.AuthorStore
	storage.CategoryStore
}

// Service is the catalog manager and query engine.
type Service struct {
	store  Store
	logger storage.Logger
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger storage.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a catalog manager with optional configuration.
func NewService(store Store, options ...Option) *Service {
	s := &Service{store: store}

	for _, option := range options {
		option(s)
	}

	return s
}

// CreateBook adds a title to the catalog. Each mutation returns the updated
// entity with its derived counts, so callers can patch local state instead of
// re-fetching the whole catalog.
func (s *Service) CreateBook(ctx context.Context, book core.Book) (core.BookDetails, error) {
	if book.TotalCopies == 0 {
		book.TotalCopies = 1
	}

	if err := book.Validate(); err != nil {
		return core.BookDetails{}, err
	}

	details, err := s.store.InsertBook(ctx, book)
	if err != nil {
		return core.BookDetails{}, err
	}

	s.logInfo(logMsgBookCreated, logAttrISBN, details.ISBN, logAttrTitle, details.Title)

	return details, nil
}

// UpdateBook applies a selective update. The storage engine enforces that
// total copies never shrink below the outstanding open-loan count.
func (s *Service) UpdateBook(ctx context.Context, isbn string, update storage.BookUpdate) (core.BookDetails, error) {
	details, err := s.store.UpdateBook(ctx, isbn, update)
	if err != nil {
		return core.BookDetails{}, err
	}

	s.logInfo(logMsgBookUpdated, logAttrISBN, isbn)

	return details, nil
}

// DeleteBook removes a title; it fails while copies are out on loan.
func (s *Service) DeleteBook(ctx context.Context, isbn string) error {
	if err := s.store.DeleteBook(ctx, isbn); err != nil {
		return err
	}

	s.logInfo(logMsgBookDeleted, logAttrISBN, isbn)

	return nil
}

// Book returns one title with availability derived at query time.
func (s *Service) Book(ctx context.Context, isbn string) (core.BookDetails, error) {
	return s.store.BookByISBN(ctx, isbn)
}

// Search serves the paginated catalog read path. Filters are conjunctive and
// optional; availability in the result is consistent with the ledger at
// query time.
func (s *Service) Search(ctx context.Context, search storage.BookSearch) (storage.BookPage, error) {
	return s.store.SearchBooks(ctx, search)
}

// CreateAuthor adds an author with a unique display name.
func (s *Service) CreateAuthor(ctx context.Context, name string) (core.Author, error) {
	return s.store.InsertAuthor(ctx, name)
}

// RenameAuthor changes an author's display name.
func (s *Service) RenameAuthor(ctx context.Context, id int64, name string) (core.Author, error) {
	return s.store.UpdateAuthor(ctx, id, name)
}

// DeleteAuthor removes an author; it fails while the author owns books.
func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	return s.store.DeleteAuthor(ctx, id)
}

// Authors lists all authors with their derived book counts.
func (s *Service) Authors(ctx context.Context) ([]core.Author, error) {
	return s.store.ListAuthors(ctx)
}

// CreateCategory adds a category with a unique display name.
func (s *Service) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	return s.store.InsertCategory(ctx, name)
}

// RenameCategory changes a category's display name.
func (s *Service) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	return s.store.UpdateCategory(ctx, id, name)
}

// DeleteCategory removes a category; it fails while the category owns books.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// Categories lists all categories with their derived book counts.
func (s *Service) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
