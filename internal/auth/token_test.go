package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

func newTestAuthority() *Authority {
	return NewAuthority(config.JWT{
		SigningKey:         "test-signing-key",
		Issuer:             "test-issuer",
		Audience:           "test-audience",
		AccessTokenMinutes: 60,
	})
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	authority := newTestAuthority()
	user := &models.User{ID: 42, Username: "alice", ProjectID: "p1"}

	token, expiresAt, err := authority.IssueAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := authority.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestValidateAccessTokenFailures(t *testing.T) {
	authority := newTestAuthority()
	user := &models.User{ID: 7, Username: "bob"}

	token, _, err := authority.IssueAccessToken(user)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		authority *Authority
		token     string
	}{
		{
			name:      "garbage token",
			authority: authority,
			token:     "not-a-jwt",
		},
		{
			name: "wrong signing key",
			authority: NewAuthority(config.JWT{
				SigningKey:         "a-different-key",
				Issuer:             "test-issuer",
				Audience:           "test-audience",
				AccessTokenMinutes: 60,
			}),
			token: token,
		},
		{
			name: "wrong issuer",
			authority: NewAuthority(config.JWT{
				SigningKey:         "test-signing-key",
				Issuer:             "other-issuer",
				Audience:           "test-audience",
				AccessTokenMinutes: 60,
			}),
			token: token,
		},
		{
			name: "wrong audience",
			authority: NewAuthority(config.JWT{
				SigningKey:         "test-signing-key",
				Issuer:             "test-issuer",
				Audience:           "other-audience",
				AccessTokenMinutes: 60,
			}),
			token: token,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.authority.ValidateAccessToken(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateAccessTokenExpiry(t *testing.T) {
	authority := newTestAuthority()
	user := &models.User{ID: 9, Username: "carol"}

	token, expiresAt, err := authority.IssueAccessToken(user)
	require.NoError(t, err)

	// Token is valid right up to expiry, invalid exactly at it.
	authority.now = func() time.Time { return expiresAt.Add(-time.Second) }

	_, err = authority.ValidateAccessToken(token)
	assert.NoError(t, err)

	authority.now = func() time.Time { return expiresAt.Add(time.Second) }

	_, err = authority.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshTokenValue(t *testing.T) {
	authority := newTestAuthority()

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		value := authority.NewRefreshTokenValue()
		require.Len(t, value, 64)
		require.False(t, seen[value], "refresh token values must not repeat")
		seen[value] = true
	}
}
