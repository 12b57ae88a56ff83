package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/middleware"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// ctxPrincipal returns the principal injected by the Authenticate
// middleware. A missing principal means the route was wired without it.
func ctxPrincipal(c echo.Context) (*ports.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return p, nil
}

func ctxUser(c echo.Context) (*domain.User, error) {
	p, err := ctxPrincipal(c)
	if err != nil {
		return nil, err
	}
	return p.User, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64(name, &id).BindError(); err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// queryPage reads ?page= and ?limit=; absent values fall back to defaults.
func queryPage(c echo.Context) (ports.Page, error) {
	var p ports.Page
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return ports.Page{}, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	return p.Normalize(), nil
}

// bindAndValidate binds the request body and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
