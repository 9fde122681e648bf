package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/librarium/core"
	"github.com/librarium/librarium/storage"
)

const (
	logMsgUserRegistered = "user registered"
	logMsgUserCreated    = "user created"
	logMsgUserDeleted    = "user deleted"
	logMsgLoginFailed    = "login rejected"
	logAttrUserID        = "user_id"
	logAttrEmail         = "email"
	logAttrRole          = "role"
)

// UserUpdate carries a selective user update from the administration surface.
// A non-empty Password is re-hashed before it reaches storage.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *core.Role
	Password string
}

// Service covers registration, login, token verification and role-gated user
// administration.
type Service struct {
	store  storage.UserStore
	tokens *Tokens
	gate   *Gate
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

// NewService creates the auth service.
func NewService(store storage.UserStore, tokens *Tokens, gate *Gate, options ...Option) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		gate:   gate,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Gate exposes the access control gate for the transport layer.
func (s *Service) Gate() *Gate {
	return s.gate
}

// Register self-registers a member account.
func (s *Service) Register(ctx context.Context, name string, email string, password string) (core.User, error) {
	user, err := s.insertUser(ctx, name, email, password, core.RoleMember)
	if err != nil {
		return core.User{}, err
	}

	s.logInfo(logMsgUserRegistered, logAttrUserID, user.ID, logAttrEmail, user.Email)

	return user, nil
}

// Login checks credentials and issues a bearer token. The email is
// normalized the same way registration stores it, so the casing a client
// types never decides whether the lookup hits.
func (s *Service) Login(ctx context.Context, email string, password string) (string, core.User, error) {
	email = normalizeEmail(email)

	if email == "" || password == "" {
		return "", core.User{}, fmt.Errorf("%w: email and password are required", core.ErrValidation)
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		// Same answer for unknown email and wrong password.
		s.logInfo(logMsgLoginFailed, logAttrEmail, email)
		return "", core.User{}, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return "", core.User{}, err
	}

	return token, user, nil
}

// Logout revokes a bearer token where an allowlist store is configured.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	return s.tokens.Revoke(ctx, tokenString)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (core.User, error) {
	userID, err := s.tokens.Verify(ctx, tokenString)
	if err != nil {
		return core.User{}, err
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("%w: unknown token subject", core.ErrUnauthorized)
	}

	return user, nil
}

// CreateUser creates an account on behalf of staff. Creating staff accounts
// is admin-only; librarians create member accounts.
func (s *Service) CreateUser(ctx context.Context, actor core.User, name string, email string, password string, role core.Role) (core.User, error) {
	if role == "" {
		role = core.RoleMember
	}

	if err := s.gate.AuthorizeUserAdmin(actor, role); err != nil {
		return core.User{}, err
	}

	user, err := s.insertUser(ctx, name, email, password, role)
	if err != nil {
		return core.User{}, err
	}

	s.logInfo(logMsgUserCreated, logAttrUserID, user.ID, logAttrRole, string(user.Role))

	return user, nil
}

// UpdateUser applies a selective update. The gate is consulted against both
// the target's current role and the requested one, so promoting to or
// demoting from staff is admin-only.
func (s *Service) UpdateUser(ctx context.Context, actor core.User, id string, update UserUpdate) (core.User, error) {
	target, err := s.store.UserByID(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	if err = s.gate.AuthorizeUserAdmin(actor, target.Role); err != nil {
		return core.User{}, err
	}

	if update.Role != nil && *update.Role != target.Role {
		if err = s.gate.AuthorizeUserAdmin(actor, *update.Role); err != nil {
			return core.User{}, err
		}
	}

	storeUpdate := storage.UserUpdate{
		Name: update.Name,
		Role: update.Role,
	}

	if update.Email != nil {
		normalized := normalizeEmail(*update.Email)
		storeUpdate.Email = &normalized
	}

	if update.Password != "" {
		hash, hashErr := hashPassword(update.Password)
		if hashErr != nil {
			return core.User{}, hashErr
		}

		storeUpdate.PasswordHash = &hash
	}

	return s.store.UpdateUser(ctx, id, storeUpdate)
}

// DeleteUser removes an account; deleting staff accounts is admin-only.
// Loan history survives the account.
func (s *Service) DeleteUser(ctx context.Context, actor core.User, id string) error {
	target, err := s.store.UserByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.gate.AuthorizeUserAdmin(actor, target.Role); err != nil {
		return err
	}

	if err = s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logInfo(logMsgUserDeleted, logAttrUserID, id)

	return nil
}

// User returns one account.
func (s *Service) User(ctx context.Context, id string) (core.User, error) {
	return s.store.UserByID(ctx, id)
}

// Users lists all accounts.
func (s *Service) Users(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) insertUser(ctx context.Context, name string, email string, password string, role core.Role) (core.User, error) {
	if len(password) < 8 {
		return core.User{}, fmt.Errorf("%w: password must be at least 8 characters", core.ErrValidation)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	user := core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}

	return s.store.InsertUser(ctx, user)
}

// normalizeEmail is the single canonical form for stored and looked-up emails.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: hashing password: %w", core.ErrUnavailable, err)
	}

	return string(hash), nil
}

func (s *Service) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
