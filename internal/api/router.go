package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/teamtask/tasktracker/internal/api/handler"
	"github.com/teamtask/tasktracker/internal/api/middleware"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth       ports.AuthService
	Gate       ports.Gate
	Identities ports.IdentityService
	Tasks      ports.TaskService
	Audit      ports.AuditTrail

	Cookie       handler.CookieOptions
	HealthChecks []handler.DependencyCheck
	Logger       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, which also holds the domain counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "tasktracker",
		Registerer: registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(deps.HealthChecks...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticate := middleware.Authenticate(deps.Gate, deps.Cookie.Name)

	// --- Auth ---
	auth := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	e.POST("/auth/token", auth.Token)
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/logout", auth.Logout, authenticate)
	e.GET("/auth/me", auth.Me, authenticate)

	// --- Admin ---
	admin := handler.NewAdminHandler(deps.Identities, deps.Audit)
	ag := e.Group("/admin", authenticate, middleware.RequireRole(deps.Gate, domain.RoleAdmin))
	ag.GET("/dashboard", admin.Dashboard)
	ag.POST("/managers", admin.CreateManager)
	ag.GET("/managers", admin.ListManagers)
	ag.GET("/managers/:id", admin.GetManager)
	ag.DELETE("/managers/:id", admin.DeleteManager)
	ag.GET("/reassignments", admin.ListReassignments)
	ag.GET("/history", admin.ListHistory)

	// --- Manager ---
	manager := handler.NewManagerHandler(deps.Identities, deps.Tasks, deps.Audit)
	mg := e.Group("/manager", authenticate, middleware.RequireRole(deps.Gate, domain.RoleManager))
	mg.GET("/dashboard", manager.Dashboard)
	mg.POST("/employees", manager.CreateEmployee)
	mg.GET("/employees", manager.ListEmployees)
	mg.DELETE("/employees/:id", manager.DeleteEmployee)
	mg.POST("/tasks", manager.CreateTask)
	mg.GET("/tasks", manager.ListTasks)
	mg.PUT("/tasks/:id/assignee", manager.Reassign)
	mg.DELETE("/tasks/:id", manager.DeleteTask)
	mg.GET("/tasks/:id/history", manager.TaskHistory)
	mg.GET("/tasks/:id/reassignments", manager.TaskReassignments)
	mg.GET("/reassignments", manager.ListReassignments)

	// --- Employee ---
	employee := handler.NewEmployeeHandler(deps.Tasks, deps.Audit)
	eg := e.Group("/employee", authenticate, middleware.RequireRole(deps.Gate, domain.RoleEmployee))
	eg.GET("/dashboard", employee.Dashboard)
	eg.GET("/tasks", employee.ListTasks)
	eg.PATCH("/tasks/:id", employee.UpdateProgress)
	eg.GET("/history", employee.ListHistory)

	return e
}
