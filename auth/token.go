package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/librarium/librarium/core"
)

// DefaultTokenTTL applies when no token lifetime is configured.
const DefaultTokenTTL = 24 * time.Hour

// ErrNoSecret is returned when Tokens is created without a signing secret.
var ErrNoSecret = errors.New("token signing secret must not be empty")

// TokenStore is an optional allowlist for issued tokens. When configured,
// a token is only accepted while its id is present in the store, which makes
// revocation (logout, account deletion) effective before expiry.
type TokenStore interface {
	Save(ctx context.Context, tokenID string, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenID string) (string, error)
	Revoke(ctx context.Context, tokenID string) error
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
	now    func() time.Time
}

// TokenOption defines a functional option for configuring Tokens.
type TokenOption func(*Tokens)

// WithTokenTTL sets the token lifetime.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokenStore sets the allowlist store.
func WithTokenStore(store TokenStore) TokenOption {
	return func(t *Tokens) {
		t.store = store
	}
}

// WithTokenClock overrides the time source, for tests.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(t *Tokens) {
		t.now = now
	}
}

// NewTokens creates a token issuer/verifier with optional configuration.
func NewTokens(secret string, options ...TokenOption) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	t := &Tokens{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}

	for _, option := range options {
		option(t)
	}

	return t, nil
}

// Issue creates a signed bearer token for a user.
func (t *Tokens) Issue(ctx context.Context, user core.User) (string, error) {
	tokenID := uuid.NewString()
	issuedAt := t.now().UTC()

	claims := jwt.MapClaims{
		"sub": user.ID,
		"jti": tokenID,
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(t.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %w", core.ErrUnavailable, err)
	}

	if t.store != nil {
		if err := t.store.Save(ctx, tokenID, user.ID, t.ttl); err != nil {
			return "", err
		}
	}

	return signed, nil
}

// Verify parses and validates a bearer token and returns the user id it was
// issued for. With an allowlist store configured, revoked tokens are rejected
// even before their expiry.
func (t *Tokens) Verify(ctx context.Context, tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))

	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token", core.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", core.ErrUnauthorized)
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: token has no subject", core.ErrUnauthorized)
	}

	if t.store != nil {
		tokenID, _ := claims["jti"].(string)

		storedUserID, lookupErr := t.store.Lookup(ctx, tokenID)
		if lookupErr != nil || storedUserID != userID {
			return "", fmt.Errorf("%w: token revoked or expired", core.ErrUnauthorized)
		}
	}

	return userID, nil
}

// Revoke invalidates one issued token. Without an allowlist store this is a
// no-op: stateless tokens stay valid until expiry.
func (t *Tokens) Revoke(ctx context.Context, tokenString string) error {
	if t.store == nil {
		return nil
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("%w: invalid token", core.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: invalid token claims", core.ErrUnauthorized)
	}

	tokenID, _ := claims["jti"].(string)

	return t.store.Revoke(ctx, tokenID)
}
