package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/uniuri"
)

// Authority issues and validates signed access tokens and mints opaque
// refresh token values. The signing key is process-wide configuration,
// loaded once at startup and never mutated at runtime.
type Authority struct {
	signingKey []byte
	issuer     string
	audience   string
	accessTTL  time.Duration

	now func() time.Time
}

// Claims are the JWT claims carried by every access token.
type Claims struct {
	Username  string `json:"username,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	jwt.RegisteredClaims
}

// NewAuthority creates a token authority from the JWT configuration.
func NewAuthority(cfg config.JWT) *Authority {
	return &Authority{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  time.Duration(cfg.AccessTokenMinutes) * time.Minute,
		now:        time.Now,
	}
}

// IssueAccessToken signs a short-lived access token for the given user.
// Subject is the user id; permissions are resolved fresh on every check via
// the permission graph and are not baked into the token.
func (a *Authority) IssueAccessToken(user *models.User) (string, time.Time, error) {
	now := a.now().UTC()
	expiresAt := now.Add(a.accessTTL)

	claims := Claims{
		Username:  user.Username,
		ProjectID: user.ProjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// NewRefreshTokenValue mints an opaque refresh token value.
// The value is cryptographically random, fixed length and not decodable;
// its only meaning is being an index into the session ledger.
func (a *Authority) NewRefreshTokenValue() string {
	return uniuri.NewLen(uniuri.TokenLen)
}

// ValidateAccessToken verifies signature, issuer, audience and expiry with
// zero clock-skew tolerance and returns the subject user id.
// Every failed check yields ErrInvalidToken; the specific reason is only
// logged, never returned, to avoid leaking token internals to callers.
func (a *Authority) ValidateAccessToken(token string) (uint64, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}

			return a.signingKey, nil
		},
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return a.now().UTC() }),
	)
	if err != nil {
		log.Debug().Err(err).Msg("access token validation failed")
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		log.Debug().Str("subject", claims.Subject).Msg("access token subject is not a user id")
		return 0, ErrInvalidToken
	}

	return userID, nil
}
