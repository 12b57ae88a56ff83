package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 60 * time.Minute

type tokenClaims struct {
	UserUUID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 bearer tokens. The subject is the
// identity's username; the uid claim pins the token to the identity's uuid.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer returns a TokenIssuer signing with key. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{key: key, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and verifying.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for user.
func (i *TokenIssuer) Issue(user *domain.User) (string, domain.TokenClaims, error) {
	now := i.now().UTC().Truncate(time.Second)
	claims := tokenClaims{
		UserUUID: user.UUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}
	return signed, toTokenClaims(&claims), nil
}

// Verify checks the signature and expiry of token. A token is expired at
// its exp instant. Every failure is reported as domain.ErrTokenInvalid.
func (i *TokenIssuer) Verify(token string) (domain.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	return toTokenClaims(claims), nil
}

func toTokenClaims(c *tokenClaims) domain.TokenClaims {
	out := domain.TokenClaims{ID: c.ID, Subject: c.Subject, UserUUID: c.UserUUID}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return out
}
