package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// CredentialStore verifies passwords against stored bcrypt hashes.
type CredentialStore struct {
	users ports.UserRepository
	cost  int
	// dummyHash is compared against when the username is unknown so both
	// failure paths pay for one bcrypt comparison.
	dummyHash []byte
}

// NewCredentialStore returns a CredentialStore hashing with cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewCredentialStore(users ports.UserRepository, cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	s := &CredentialStore{users: users, cost: cost}

	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	// bcrypt only reads the first 72 bytes; 32 random bytes never collide with a real password.
	s.dummyHash, _ = bcrypt.GenerateFromPassword(seed, cost)
	return s
}

// Hash returns the bcrypt hash of password.
func (s *CredentialStore) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify returns the identity for username when password matches its hash.
// Unknown usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
