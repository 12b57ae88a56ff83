package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

func formRequest(e *echo.Echo, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func loginAs(user *domain.User) *stubAuth {
	return &stubAuth{login: func(username, password string) (*ports.LoginResult, error) {
		if username != user.Username || password != "secret" {
			return nil, domain.ErrInvalidCredentials
		}
		return &ports.LoginResult{Token: "signed", ExpiresAt: fixedNow.Add(time.Hour), User: user}, nil
	}}
}

func TestAuthHandler_Token(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(managerUser), CookieOptions{Name: "access_token"})
	c, rec := formRequest(e, "/auth/token", url.Values{"username": {"mia"}, "password": {"secret"}})

	if err := h.Token(c); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.AccessToken != "signed" || body.TokenType != "bearer" {
		t.Fatalf("body = %+v", body)
	}
}

func TestAuthHandler_TokenBadCredentials(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(managerUser), CookieOptions{Name: "access_token"})
	c, _ := formRequest(e, "/auth/token", url.Values{"username": {"mia"}, "password": {"nope"}})

	if err := h.Token(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthHandler_TokenMissingPassword(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(managerUser), CookieOptions{Name: "access_token"})
	c, _ := formRequest(e, "/auth/token", url.Values{"username": {"mia"}})

	if err := h.Token(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAuthHandler_LoginSetsCookieAndRedirects(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(loginAs(employeeUser), CookieOptions{Name: "access_token", Secure: true})
	h.now = func() time.Time { return fixedNow }
	c, rec := formRequest(e, "/auth/login", url.Values{"username": {"eve"}, "password": {"secret"}})

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/employee/dashboard" {
		t.Fatalf("location = %q", loc)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "access_token" || ck.Value != "signed" {
		t.Fatalf("cookie = %s=%s", ck.Name, ck.Value)
	}
	if !ck.HttpOnly || !ck.Secure {
		t.Fatalf("cookie flags: httponly=%v secure=%v", ck.HttpOnly, ck.Secure)
	}
	if ck.MaxAge != 3600 {
		t.Fatalf("max-age = %d, want 3600", ck.MaxAge)
	}
	if strings.Contains(rec.Body.String(), "signed") {
		t.Fatalf("token leaked into body")
	}
}

func TestAuthHandler_LogoutRevokesAndClearsCookie(t *testing.T) {
	var revoked string
	auth := &stubAuth{logout: func(p *ports.Principal) error {
		revoked = p.Token
		return nil
	}}
	e := newEcho()
	h := NewAuthHandler(auth, CookieOptions{Name: "access_token"})
	c, rec := newRequest(e, http.MethodPost, "/auth/logout", "", managerUser)

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if revoked != "tok-mia" {
		t.Fatalf("revoked = %q", revoked)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cookies)
	}
}

func TestAuthHandler_LogoutWithoutPrincipal(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuth{}, CookieOptions{Name: "access_token"})
	c, _ := newRequest(e, http.MethodPost, "/auth/logout", "", nil)

	if err := h.Logout(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuth{}, CookieOptions{Name: "access_token"})
	c, rec := newRequest(e, http.MethodGet, "/auth/me", "", employeeUser)

	if err := h.Me(c); err != nil {
		t.Fatalf("Me: %v", err)
	}
	var body userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Username != "eve" || body.Role != "employee" {
		t.Fatalf("body = %+v", body)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password field exposed")
	}
}
