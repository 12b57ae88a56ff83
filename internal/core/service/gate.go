package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// Gate resolves callers from their token and enforces exact-role access.
type Gate struct {
	registry *RevocationRegistry
	tokens   *TokenIssuer
	users    ports.UserRepository
}

// NewGate returns a Gate.
func NewGate(registry *RevocationRegistry, tokens *TokenIssuer, users ports.UserRepository) *Gate {
	return &Gate{registry: registry, tokens: tokens, users: users}
}

// Authenticate checks, in order: token presence, revocation, signature and
// expiry, and that the subject still names the identity the token was issued
// to. A username taken over after its owner was deleted does not match.
func (g *Gate) Authenticate(ctx context.Context, creds ports.Credentials) (*ports.Principal, error) {
	token := creds.Token()
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	revoked, err := g.registry.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownSubject
		}
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	if user.UUID != claims.UserUUID {
		return nil, domain.ErrUnknownSubject
	}

	return &ports.Principal{User: user, Token: token, Claims: claims}, nil
}

// RequireRole succeeds only when user's role equals role exactly; there is
// no role hierarchy.
func (g *Gate) RequireRole(user *domain.User, role domain.Role) error {
	if user == nil {
		return domain.ErrNotAuthenticated
	}
	if user.Role != role {
		return domain.RoleRequired(role)
	}
	return nil
}
