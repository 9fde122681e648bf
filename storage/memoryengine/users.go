package memoryengine

import (
	"context"
	"fmt"
	"sort"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

// InsertUser creates a user; the email must be unique.
func (e *Engine) InsertUser(_ context.Context, user core.User) (core.User, error) {
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.users {
		if existing.Email == user.Email {
			return core.User{}, fmt.Errorf("%w: email already registered", core.ErrConflict)
		}
	}

	e.users[user.ID] = user

	return user, nil
}

// UpdateUser applies a selective update, keeping emails unique.
func (e *Engine) UpdateUser(_ context.Context, id string, update storage.UserUpdate) (core.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	user, exists := e.users[id]
	if !exists {
		return core.User{}, fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}

	if update.Email != nil {
		for otherID, existing := range e.users {
			if existing.Email == *update.Email && otherID != id {
				return core.User{}, fmt.Errorf("%w: email already registered", core.ErrConflict)
			}
		}

		user.Email = *update.Email
	}

	if update.Role != nil {
		user.Role = *update.Role
	}

	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}

	if err := user.Validate(); err != nil {
		return core.User{}, err
	}

	e.users[id] = user

	return user, nil
}

// DeleteUser removes a user account. Loan history keeps the member id.
func (e *Engine) DeleteUser(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.users[id]; !exists {
		return fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	delete(e.users, id)

	return nil
}

// UserByID returns one user.
func (e *Engine) UserByID(_ context.Context, id string) (core.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	user, exists := e.users[id]
	if !exists {
		return core.User{}, fmt.Errorf("%w: user %q", core.ErrNotFound, id)
	}

	return user, nil
}

// UserByEmail returns the user registered under the given email.
func (e *Engine) UserByEmail(_ context.Context, email string) (core.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, user := range e.users {
		if user.Email == email {
			return user, nil
		}
	}

	return core.User{}, fmt.Errorf("%w: no user with email %q", core.ErrNotFound, email)
}

// ListUsers returns all users sorted by name.
func (e *Engine) ListUsers(_ context.Context) ([]core.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	users := make([]core.User, 0, len(e.users))
	for _, user := range e.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}

		return users[i].ID < users[j].ID
	})

	return users, nil
}
