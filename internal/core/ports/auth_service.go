package ports

import (
	"context"
	"time"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// Credentials carries the raw token sources of a request. The bearer value
// wins; the cookie is only consulted when no bearer token was sent.
type Credentials struct {
	Bearer string
	Cookie string
}

// Token returns the token to authenticate with, or "" when none was sent.
func (c Credentials) Token() string {
	if c.Bearer != "" {
		return c.Bearer
	}
	return c.Cookie
}

// Principal is an authenticated caller together with the token it used.
type Principal struct {
	User   *domain.User
	Token  string
	Claims domain.TokenClaims
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService handles login and logout.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, principal *Principal) error
}

// Gate authenticates requests and enforces exact-role access.
type Gate interface {
	Authenticate(ctx context.Context, creds Credentials) (*Principal, error)
	RequireRole(user *domain.User, role domain.Role) error
}
