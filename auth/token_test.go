package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/core"
)

func Test_Tokens_RequireASecret(t *testing.T) {
	_, err := auth.NewTokens("")

	assert.ErrorIs(t, err, auth.ErrNoSecret)
}

func Test_Tokens_IssueVerifyRoundTrip(t *testing.T) {
	tokens, err := auth.NewTokens("test-secret")
	require.NoError(t, err)

	user := core.User{ID: "user-1"}

	signed, err := tokens.Issue(context.Background(), user)
	require.NoError(t, err)

	userID, err := tokens.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func Test_Tokens_RejectExpiredTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokens, err := auth.NewTokens("test-secret",
		auth.WithTokenTTL(time.Hour),
		auth.WithTokenClock(func() time.Time { return now }))
	require.NoError(t, err)

	signed, err := tokens.Issue(context.Background(), core.User{ID: "user-1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	_, err = tokens.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func Test_Tokens_RejectTamperedTokens(t *testing.T) {
	issuer, err := auth.NewTokens("issuer-secret")
	require.NoError(t, err)

	verifier, err := auth.NewTokens("different-secret")
	require.NoError(t, err)

	signed, err := issuer.Issue(context.Background(), core.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func Test_Tokens_AllowlistMakesRevocationEffective(t *testing.T) {
	// arrange
	store := auth.NewMemoryTokenStore()

	tokens, err := auth.NewTokens("test-secret", auth.WithTokenStore(store))
	require.NoError(t, err)

	signed, err := tokens.Issue(context.Background(), core.User{ID: "user-1"})
	require.NoError(t, err)

	// the token verifies while allowlisted
	_, err = tokens.Verify(context.Background(), signed)
	require.NoError(t, err)

	// act
	require.NoError(t, tokens.Revoke(context.Background(), signed))

	// assert: revoked before expiry, still rejected
	_, err = tokens.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func Test_MemoryTokenStore_ExpiresEntries(t *testing.T) {
	store := auth.NewMemoryTokenStore()

	require.NoError(t, store.Save(context.Background(), "token-1", "user-1", -time.Second))

	_, err := store.Lookup(context.Background(), "token-1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
