package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// AuthService implements login and logout.
type AuthService struct {
	credentials *CredentialStore
	tokens      *TokenIssuer
	registry    *RevocationRegistry
	log         zerolog.Logger
}

func NewAuthService(credentials *CredentialStore, tokens *TokenIssuer, registry *RevocationRegistry, log zerolog.Logger) *AuthService {
	return &AuthService{credentials: credentials, tokens: tokens, registry: registry, log: log}
}

// Login verifies username/password and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// Logout revokes the token the principal authenticated with.
func (s *AuthService) Logout(ctx context.Context, principal *ports.Principal) error {
	if principal == nil || principal.Token == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.registry.Revoke(ctx, principal.Token, principal.Claims.ExpiresAt); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", principal.User.ID).Str("jti", principal.Claims.ID).Msg("token revoked")
	return nil
}

var (
	_ ports.AuthService = (*AuthService)(nil)
	_ ports.Gate        = (*Gate)(nil)
)
