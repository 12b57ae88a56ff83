package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// RequireRole admits only principals whose role equals role. It must run
// after Authenticate.
func RequireRole(gate ports.Gate, role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var user *domain.User
			if p, ok := Principal(c); ok {
				user = p.User
			}

			if err := gate.RequireRole(user, role); err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}
			return next(c)
		}
	}
}
