package core

import (
	"fmt"
	"strings"
)

// Role is the capability level of a user account.
type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role string coming from a client or from storage.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleLibrarian, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

// IsStaff reports whether the role carries catalog-management capabilities.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdmin
}

// User is an account in the system. PasswordHash is a bcrypt hash; the clear
// password never leaves the auth boundary.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// Validate checks the invariants a User must satisfy before any write.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}

	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}

	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}

	return nil
}
