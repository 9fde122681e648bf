package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/librarium/librarium/core"
)

// ImportRecord is a normalized book record from an external bibliographic
// source. Only descriptive metadata crosses this boundary - availability is
// always derived locally from open loans, never imported.
type ImportRecord struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
	Cover       string `json:"cover"`
	Description string `json:"description"`
}

// Import creates a book from an external record with create-or-attach
// metadata semantics: author and category are looked up by display name and
// created when absent.
func (s *Service) Import(ctx context.Context, record ImportRecord) (core.BookDetails, error) {
	if strings.TrimSpace(record.ISBN) == "" {
		return core.BookDetails{}, fmt.Errorf("%w: isbn is required", core.ErrValidation)
	}

	if strings.TrimSpace(record.Title) == "" {
		return core.BookDetails{}, fmt.Errorf("%w: title is required", core.ErrValidation)
	}

	if strings.TrimSpace(record.Author) == "" {
		return core.BookDetails{}, fmt.Errorf("%w: author is required", core.ErrValidation)
	}

	if strings.TrimSpace(record.Category) == "" {
		return core.BookDetails{}, fmt.Errorf("%w: category is required", core.ErrValidation)
	}

	author, err := s.store.EnsureAuthor(ctx, record.Author)
	if err != nil {
		return core.BookDetails{}, err
	}

	category, err := s.store.EnsureCategory(ctx, record.Category)
	if err != nil {
		return core.BookDetails{}, err
	}

	return s.CreateBook(ctx, core.Book{
		ISBN:        record.ISBN,
		Title:       record.Title,
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		TotalCopies: record.TotalCopies,
		Cover:       record.Cover,
		Description: record.Description,
	})
}
