package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

type failingUserRepo struct {
	stubUserRepo
	err error
}

func (r failingUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, r.err
}

func TestCredentialStore_Hash_IsBcrypt(t *testing.T) {
	store := NewCredentialStore(stubUserRepo{db: newMemStore()}, bcrypt.MinCost)

	hash, err := store.Hash("pass123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("pass123")); err != nil {
		t.Fatalf("hash does not match password: %v", err)
	}
}

func TestCredentialStore_InvalidCost_FallsBackToDefault(t *testing.T) {
	store := NewCredentialStore(stubUserRepo{db: newMemStore()}, 99)
	if store.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", store.cost)
	}
}

func TestCredentialStore_Verify(t *testing.T) {
	f := newFixture()
	admin := f.mustBootstrap("root")
	ctx := context.Background()

	user, err := f.credentials.Verify(ctx, "root", "admin-pass")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("expected user %d, got %d", admin.ID, user.ID)
	}

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "root", "nope"},
		{"unknown user", "ghost", "admin-pass"},
		{"empty username", "", "admin-pass"},
		{"empty password", "root", ""},
		{"case sensitive username", "ROOT", "admin-pass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.credentials.Verify(ctx, tc.username, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestCredentialStore_Verify_RepositoryError(t *testing.T) {
	store := NewCredentialStore(failingUserRepo{err: errBoom}, bcrypt.MinCost)

	_, err := store.Verify(context.Background(), "root", "pw")
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("storage failure must not look like a bad password")
	}
}
