package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// CookieOptions configures the session cookie set by browser logins.
type CookieOptions struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   ports.AuthService
	cookie CookieOptions
	now    func() time.Time
}

func NewAuthHandler(auth ports.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, now: time.Now}
}

// Token exchanges credentials for a bearer token.
//
// @Summary      Obtain a bearer token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  tokenResponse
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	res, err := h.login(c, "api")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: res.Token, TokenType: "bearer"})
}

// Login signs a browser in: the token goes into an HTTP-only cookie and the
// caller is redirected to its role's dashboard.
//
// @Summary      Browser login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	res, err := h.login(c, "browser")
	if err != nil {
		return err
	}

	maxAge := int(res.ExpiresAt.Sub(h.now()).Seconds())
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, "/"+string(res.User.Role)+"/dashboard")
}

func (h *AuthHandler) login(c echo.Context, channel string) (*ports.LoginResult, error) {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(channel, "failure").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues(channel, "success").Inc()
	return res, nil
}

// Logout revokes the caller's current token and clears the session cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), p); err != nil {
		return err
	}
	metrics.TokensRevokedTotal.Inc()

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Me returns the authenticated identity.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user, nil))
}
