package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

// InsertBook creates a book after validating its author and category exist.
func (e *Engine) InsertBook(_ context.Context, book core.Book) (core.BookDetails, error) {
	if err := book.Validate(); err != nil {
		return core.BookDetails{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.books[book.ISBN]; exists {
		return core.BookDetails{}, fmt.Errorf("%w: book with ISBN %q already exists", core.ErrConflict, book.ISBN)
	}

	if _, ok := e.authors[book.AuthorID]; !ok {
		return core.BookDetails{}, fmt.Errorf("%w: author %d", core.ErrNotFound, book.AuthorID)
	}

	if _, ok := e.categories[book.CategoryID]; !ok {
		return core.BookDetails{}, fmt.Errorf("%w: category %d", core.ErrNotFound, book.CategoryID)
	}

	e.books[book.ISBN] = book

	return e.detailsLocked(book), nil
}

// UpdateBook applies a selective update. Shrinking the copy pool below the
// open-loan count fails with core.ErrConflict.
func (e *Engine) UpdateBook(_ context.Context, isbn string, update storage.BookUpdate) (core.BookDetails, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	book, exists := e.books[isbn]
	if !exists {
		return core.BookDetails{}, fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	if update.Title != nil {
		book.Title = *update.Title
	}

	if update.AuthorID != nil {
		if _, ok := e.authors[*update.AuthorID]; !ok {
			return core.BookDetails{}, fmt.Errorf("%w: author %d", core.ErrNotFound, *update.AuthorID)
		}

		book.AuthorID = *update.AuthorID
	}

	if update.CategoryID != nil {
		if _, ok := e.categories[*update.CategoryID]; !ok {
			return core.BookDetails{}, fmt.Errorf("%w: category %d", core.ErrNotFound, *update.CategoryID)
		}

		book.CategoryID = *update.CategoryID
	}

	if update.Cover != nil {
		book.Cover = *update.Cover
	}

	if update.Description != nil {
		book.Description = *update.Description
	}

	if update.TotalCopies != nil {
		if *update.TotalCopies < 1 {
			return core.BookDetails{}, fmt.Errorf("%w: total copies must be at least 1", core.ErrValidation)
		}

		if open := e.openLoanCount(isbn); *update.TotalCopies < open {
			return core.BookDetails{}, fmt.Errorf(
				"%w: cannot reduce total copies to %d with %d copies out on loan",
				core.ErrConflict, *update.TotalCopies, open)
		}

		book.TotalCopies = *update.TotalCopies
	}

	e.books[isbn] = book

	return e.detailsLocked(book), nil
}

// DeleteBook removes a book unless open loans still reference it. Closed
// loans are history and do not block deletion.
func (e *Engine) DeleteBook(_ context.Context, isbn string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.books[isbn]; !exists {
		return fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	if open := e.openLoanCount(isbn); open > 0 {
		return fmt.Errorf("%w: %d copies still out on loan", core.ErrConflict, open)
	}

	delete(e.books, isbn)

	return nil
}

// BookByISBN returns the joined book detail with derived availability.
func (e *Engine) BookByISBN(_ context.Context, isbn string) (core.BookDetails, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	book, exists := e.books[isbn]
	if !exists {
		return core.BookDetails{}, fmt.Errorf("%w: book %q", core.ErrNotFound, isbn)
	}

	return e.detailsLocked(book), nil
}

// SearchBooks filters, sorts and paginates the catalog.
func (e *Engine) SearchBooks(_ context.Context, search storage.BookSearch) (storage.BookPage, error) {
	search.Normalize()

	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make([]core.BookDetails, 0, len(e.books))

	for _, book := range e.books {
		details := e.detailsLocked(book)

		if search.Title != "" && !strings.Contains(strings.ToLower(details.Title), strings.ToLower(search.Title)) {
			continue
		}

		if search.Author != "" && details.Author != search.Author {
			continue
		}

		if search.Category != "" && details.Category != search.Category {
			continue
		}

		matches = append(matches, details)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Title != matches[j].Title {
			return matches[i].Title < matches[j].Title
		}

		return matches[i].ISBN < matches[j].ISBN
	})

	pagination := storage.Paginate(search.Page, search.PerPage, len(matches))
	from, to := pagination.Slice(len(matches))

	return storage.BookPage{
		Items:      matches[from:to],
		Pagination: pagination,
	}, nil
}

// detailsLocked joins a book with display names and derived availability.
// Callers must hold e.mu.
func (e *Engine) detailsLocked(book core.Book) core.BookDetails {
	return core.BookDetails{
		Book:            book,
		AvailableCopies: book.TotalCopies - e.openLoanCount(book.ISBN),
		Author:          e.authors[book.AuthorID],
		Category:        e.categories[book.CategoryID],
	}
}
