package core

import (
	"fmt"
	"strings"
)

// Book is a catalog title. The ISBN is the immutable business key; a title
// owns a pool of TotalCopies identical physical copies.
type Book struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	AuthorID    int64  `json:"author_id"`
	CategoryID  int64  `json:"category_id"`
	TotalCopies int    `json:"total_copies"`
	Cover       string `json:"cover,omitempty"`
	Description string `json:"description,omitempty"`
}

// BookDetails is a Book joined with its author/category display names and the
// derived available-copies count, as every read path reports it.
type BookDetails struct {
	Book
	AvailableCopies int    `json:"available_copies"`
	Author          string `json:"author"`
	Category        string `json:"category"`
}

// Author is a book author with a unique display name. BooksCount is derived
// by the storage layer and guards deletion.
type Author struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	BooksCount int    `json:"books_count"`
}

// Category is a book category with a unique display name. BooksCount is
// derived by the storage layer and guards deletion.
type Category struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	BooksCount int    `json:"books_count"`
}

// Validate checks the invariants a Book must satisfy before any write.
func (b Book) Validate() error {
	if strings.TrimSpace(b.ISBN) == "" {
		return fmt.Errorf("%w: isbn is required", ErrValidation)
	}

	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}

	if b.AuthorID == 0 {
		return fmt.Errorf("%w: author_id is required", ErrValidation)
	}

	if b.CategoryID == 0 {
		return fmt.Errorf("%w: category_id is required", ErrValidation)
	}

	if b.TotalCopies < 1 {
		return fmt.Errorf("%w: total copies must be at least 1", ErrValidation)
	}

	return nil
}
