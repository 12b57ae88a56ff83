package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// PrincipalKey is the echo.Context key holding the authenticated *ports.Principal.
const PrincipalKey = "principal"

// Authenticate resolves the caller through gate. The token is read from the
// Authorization bearer header, or from cookieName when no bearer is sent.
func Authenticate(gate ports.Gate, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds := ports.Credentials{Bearer: bearerToken(c)}
			if cookie, err := c.Cookie(cookieName); err == nil {
				creds.Cookie = cookie.Value
			}

			principal, err := gate.Authenticate(c.Request().Context(), creds)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>"
// header. Other schemes are ignored so the cookie can still be used.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Principal returns the principal stored by Authenticate, if any.
func Principal(c echo.Context) (*ports.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*ports.Principal)
	return p, ok && p != nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
