package memoryengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/librarium/librarium/core"
)

// InsertAuthor creates an author with a unique display name.
func (e *Engine) InsertAuthor(_ context.Context, name string) (core.Author, error) {
	if strings.TrimSpace(name) == "" {
		return core.Author{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.authors {
		if existing == name {
			return core.Author{}, fmt.Errorf("%w: author %q already exists", core.ErrConflict, name)
		}
	}

	e.nextAuthorID++
	e.authors[e.nextAuthorID] = name

	return core.Author{ID: e.nextAuthorID, Name: name}, nil
}

// UpdateAuthor renames an author, keeping display names unique.
func (e *Engine) UpdateAuthor(_ context.Context, id int64, name string) (core.Author, error) {
	if strings.TrimSpace(name) == "" {
		return core.Author{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.authors[id]; !exists {
		return core.Author{}, fmt.Errorf("%w: author %d", core.ErrNotFound, id)
	}

	for otherID, existing := range e.authors {
		if existing == name && otherID != id {
			return core.Author{}, fmt.Errorf("%w: author name %q already in use", core.ErrConflict, name)
		}
	}

	e.authors[id] = name

	return core.Author{ID: id, Name: name, BooksCount: e.authorBooksLocked(id)}, nil
}

// DeleteAuthor removes an author unless books still reference it.
func (e *Engine) DeleteAuthor(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.authors[id]; !exists {
		return fmt.Errorf("%w: author %d", core.ErrNotFound, id)
	}

	if count := e.authorBooksLocked(id); count > 0 {
		return fmt.Errorf("%w: author still referenced by %d books", core.ErrConflict, count)
	}

	delete(e.authors, id)

	return nil
}

// AuthorByID returns an author with its derived books count.
func (e *Engine) AuthorByID(_ context.Context, id int64) (core.Author, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	name, exists := e.authors[id]
	if !exists {
		return core.Author{}, fmt.Errorf("%w: author %d", core.ErrNotFound, id)
	}

	return core.Author{ID: id, Name: name, BooksCount: e.authorBooksLocked(id)}, nil
}

// ListAuthors returns all authors sorted by name.
func (e *Engine) ListAuthors(_ context.Context) ([]core.Author, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	authors := make([]core.Author, 0, len(e.authors))
	for id, name := range e.authors {
		authors = append(authors, core.Author{ID: id, Name: name, BooksCount: e.authorBooksLocked(id)})
	}

	sort.Slice(authors, func(i, j int) bool { return authors[i].Name < authors[j].Name })

	return authors, nil
}

// EnsureAuthor returns the author with the given name, creating it if absent.
// Lookup and create share one critical section, so concurrent ensures of the
// same name converge on a single author instead of surfacing a conflict.
func (e *Engine) EnsureAuthor(_ context.Context, name string) (core.Author, error) {
	if strings.TrimSpace(name) == "" {
		return core.Author{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, existing := range e.authors {
		if existing == name {
			return core.Author{ID: id, Name: name, BooksCount: e.authorBooksLocked(id)}, nil
		}
	}

	e.nextAuthorID++
	e.authors[e.nextAuthorID] = name

	return core.Author{ID: e.nextAuthorID, Name: name}, nil
}

// InsertCategory creates a category with a unique display name.
func (e *Engine) InsertCategory(_ context.Context, name string) (core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return core.Category{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.categories {
		if existing == name {
			return core.Category{}, fmt.Errorf("%w: category %q already exists", core.ErrConflict, name)
		}
	}

	e.nextCategoryID++
	e.categories[e.nextCategoryID] = name

	return core.Category{ID: e.nextCategoryID, Name: name}, nil
}

// UpdateCategory renames a category, keeping display names unique.
func (e *Engine) UpdateCategory(_ context.Context, id int64, name string) (core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return core.Category{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.categories[id]; !exists {
		return core.Category{}, fmt.Errorf("%w: category %d", core.ErrNotFound, id)
	}

	for otherID, existing := range e.categories {
		if existing == name && otherID != id {
			return core.Category{}, fmt.Errorf("%w: category name %q already in use", core.ErrConflict, name)
		}
	}

	e.categories[id] = name

	return core.Category{ID: id, Name: name, BooksCount: e.categoryBooksLocked(id)}, nil
}

// DeleteCategory removes a category unless books still reference it.
func (e *Engine) DeleteCategory(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.categories[id]; !exists {
		return fmt.Errorf("%w: category %d", core.ErrNotFound, id)
	}

	if count := e.categoryBooksLocked(id); count > 0 {
		return fmt.Errorf("%w: category still referenced by %d books", core.ErrConflict, count)
	}

	delete(e.categories, id)

	return nil
}

// CategoryByID returns a category with its derived books count.
func (e *Engine) CategoryByID(_ context.Context, id int64) (core.Category, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	name, exists := e.categories[id]
	if !exists {
		return core.Category{}, fmt.Errorf("%w: category %d", core.ErrNotFound, id)
	}

	return core.Category{ID: id, Name: name, BooksCount: e.categoryBooksLocked(id)}, nil
}

// ListCategories returns all categories sorted by name.
func (e *Engine) ListCategories(_ context.Context) ([]core.Category, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	categories := make([]core.Category, 0, len(e.categories))
	for id, name := range e.categories {
		categories = append(categories, core.Category{ID: id, Name: name, BooksCount: e.categoryBooksLocked(id)})
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return categories, nil
}

// EnsureCategory returns the category with the given name, creating it if
// absent. Lookup and create share one critical section, so concurrent ensures
// of the same name converge on a single category.
func (e *Engine) EnsureCategory(_ context.Context, name string) (core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return core.Category{}, fmt.Errorf("%w: name is required", core.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, existing := range e.categories {
		if existing == name {
			return core.Category{ID: id, Name: name, BooksCount: e.categoryBooksLocked(id)}, nil
		}
	}

	e.nextCategoryID++
	e.categories[e.nextCategoryID] = name

	return core.Category{ID: e.nextCategoryID, Name: name}, nil
}

// authorBooksLocked counts books owned by an author. Callers must hold e.mu.
func (e *Engine) authorBooksLocked(id int64) int {
	count := 0

	for _, book := range e.books {
		if book.AuthorID == id {
			count++
		}
	}

	return count
}

// categoryBooksLocked counts books owned by a category. Callers must hold e.mu.
func (e *Engine) categoryBooksLocked(id int64) int {
	count := 0

	for _, book := range e.books {
		if book.CategoryID == id {
			count++
		}
	}

	return count
}
