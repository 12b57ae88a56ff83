package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/middleware"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

var (
	adminUser    = &domain.User{ID: 1, UUID: "u-1", Name: "Root", Username: "root", Email: "root@example.com", Role: domain.RoleAdmin}
	managerUser  = &domain.User{ID: 2, UUID: "u-2", Name: "Mia", Username: "mia", Email: "mia@example.com", Role: domain.RoleManager, CreatedByID: ptr(int64(1))}
	employeeUser = &domain.User{ID: 3, UUID: "u-3", Name: "Eve", Username: "eve", Email: "eve@example.com", Role: domain.RoleEmployee, CreatedByID: ptr(int64(2))}
	fixedNow     = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

type stubAuth struct {
	login  func(username, password string) (*ports.LoginResult, error)
	logout func(p *ports.Principal) error
}

func (s *stubAuth) Login(_ context.Context, username, password string) (*ports.LoginResult, error) {
	return s.login(username, password)
}

func (s *stubAuth) Logout(_ context.Context, p *ports.Principal) error {
	if s.logout == nil {
		return nil
	}
	return s.logout(p)
}

type stubIdentities struct {
	ports.IdentityService // unset methods panic

	createManager  func(admin *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error)
	listManagers   func() ([]*ports.IdentityView, error)
	managerDetail  func(id int64) (*ports.ManagerDetail, error)
	deleteManager  func(id int64) error
	createEmployee func(manager *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error)
	listEmployees  func(manager *domain.User) ([]ports.EmployeeTasks, error)
	deleteEmployee func(manager *domain.User, id int64) error
}

func (s *stubIdentities) CreateManager(_ context.Context, admin *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error) {
	return s.createManager(admin, in)
}

func (s *stubIdentities) ListManagers(context.Context) ([]*ports.IdentityView, error) {
	return s.listManagers()
}

func (s *stubIdentities) ManagerDetail(_ context.Context, id int64) (*ports.ManagerDetail, error) {
	return s.managerDetail(id)
}

func (s *stubIdentities) DeleteManager(_ context.Context, id int64) error {
	return s.deleteManager(id)
}

func (s *stubIdentities) CreateEmployee(_ context.Context, manager *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error) {
	return s.createEmployee(manager, in)
}

func (s *stubIdentities) ListEmployees(_ context.Context, manager *domain.User) ([]ports.EmployeeTasks, error) {
	return s.listEmployees(manager)
}

func (s *stubIdentities) DeleteEmployee(_ context.Context, manager *domain.User, id int64) error {
	return s.deleteEmployee(manager, id)
}

type stubTasks struct {
	ports.TaskService

	create         func(manager *domain.User, in ports.CreateTaskInput) (*domain.Task, error)
	updateProgress func(employee *domain.User, in ports.UpdateProgressInput) (*domain.Task, error)
	reassign       func(manager *domain.User, in ports.ReassignInput) (*domain.Task, error)
	del            func(manager *domain.User, id int64) error
	listAssigned   func(employee *domain.User) ([]*domain.Task, error)
	listIssued     func(manager *domain.User) ([]*domain.Task, error)
	history        func(manager *domain.User, id int64) ([]*domain.HistoryEntry, error)
	reassignments  func(manager *domain.User, id int64) ([]*domain.ReassignmentEntry, error)
	dashboard      func(manager *domain.User) (*ports.Dashboard, error)
}

func (s *stubTasks) Create(_ context.Context, m *domain.User, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.create(m, in)
}

func (s *stubTasks) UpdateProgress(_ context.Context, e *domain.User, in ports.UpdateProgressInput) (*domain.Task, error) {
	return s.updateProgress(e, in)
}

func (s *stubTasks) Reassign(_ context.Context, m *domain.User, in ports.ReassignInput) (*domain.Task, error) {
	return s.reassign(m, in)
}

func (s *stubTasks) Delete(_ context.Context, m *domain.User, id int64) error {
	return s.del(m, id)
}

func (s *stubTasks) ListAssigned(_ context.Context, e *domain.User) ([]*domain.Task, error) {
	return s.listAssigned(e)
}

func (s *stubTasks) ListIssued(_ context.Context, m *domain.User) ([]*domain.Task, error) {
	return s.listIssued(m)
}

func (s *stubTasks) History(_ context.Context, m *domain.User, id int64) ([]*domain.HistoryEntry, error) {
	return s.history(m, id)
}

func (s *stubTasks) Reassignments(_ context.Context, m *domain.User, id int64) ([]*domain.ReassignmentEntry, error) {
	return s.reassignments(m, id)
}

func (s *stubTasks) Dashboard(_ context.Context, m *domain.User) (*ports.Dashboard, error) {
	return s.dashboard(m)
}

type stubAudit struct {
	ports.AuditTrail

	historyByActor         func(actorID int64) ([]*domain.HistoryEntry, error)
	reassignmentsByManager func(managerID int64) ([]*domain.ReassignmentEntry, error)
	allHistory             func(p ports.Page) (*ports.HistoryPage, error)
	allReassignments       func(p ports.Page) (*ports.ReassignmentPage, error)
}

func (s *stubAudit) HistoryByActor(_ context.Context, id int64) ([]*domain.HistoryEntry, error) {
	return s.historyByActor(id)
}

func (s *stubAudit) ReassignmentsByManager(_ context.Context, id int64) ([]*domain.ReassignmentEntry, error) {
	return s.reassignmentsByManager(id)
}

func (s *stubAudit) AllHistory(_ context.Context, p ports.Page) (*ports.HistoryPage, error) {
	return s.allHistory(p)
}

func (s *stubAudit) AllReassignments(_ context.Context, p ports.Page) (*ports.ReassignmentPage, error) {
	return s.allReassignments(p)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest builds a context for method/target. A non-empty body is sent as
// JSON; user, when set, is injected as the authenticated principal.
func newRequest(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.PrincipalKey, &ports.Principal{User: user, Token: "tok-" + user.Username})
	}
	return c, rec
}

func withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func sampleTask(id int64) *domain.Task {
	return &domain.Task{
		ID:         id,
		Title:      "write report",
		AssigneeID: ptr(employeeUser.ID),
		AssignerID: managerUser.ID,
		Status:     domain.StatusPending,
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	}
}
