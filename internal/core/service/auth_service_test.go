package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture()
	admin := f.mustBootstrap("root")

	res, err := f.auth.Login(context.Background(), "root", "admin-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected a token")
	}
	if res.User.ID != admin.ID {
		t.Fatalf("expected user %d, got %d", admin.ID, res.User.ID)
	}
	if !res.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", res.ExpiresAt)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	f.mustBootstrap("root")

	if _, err := f.auth.Login(context.Background(), "root", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.auth.Login(context.Background(), "nobody", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthService_Logout_RevokesOnlyThatToken(t *testing.T) {
	f := newFixture()
	f.mustBootstrap("root")
	ctx := context.Background()

	first, _ := f.auth.Login(ctx, "root", "admin-pass")
	second, _ := f.auth.Login(ctx, "root", "admin-pass")

	p, err := f.gate.Authenticate(ctx, ports.Credentials{Bearer: first.Token})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if err := f.auth.Logout(ctx, p); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	if _, err := f.gate.Authenticate(ctx, ports.Credentials{Bearer: first.Token}); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
	if _, err := f.gate.Authenticate(ctx, ports.Credentials{Bearer: second.Token}); err != nil {
		t.Fatalf("other sessions must stay valid: %v", err)
	}
}

func TestAuthService_Logout_RequiresPrincipal(t *testing.T) {
	f := newFixture()
	if err := f.auth.Logout(context.Background(), nil); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
