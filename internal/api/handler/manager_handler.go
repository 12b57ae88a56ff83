package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// ManagerHandler serves the manager-only routes.
type ManagerHandler struct {
	identities ports.IdentityService
	tasks      ports.TaskService
	audit      ports.AuditTrail
}

func NewManagerHandler(identities ports.IdentityService, tasks ports.TaskService, audit ports.AuditTrail) *ManagerHandler {
	return &ManagerHandler{identities: identities, tasks: tasks, audit: audit}
}

// CreateEmployee handles POST /manager/employees.
//
// @Summary      Create an employee under the caller
// @Tags         manager
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIdentityRequest  true  "Employee details (role must be employee)"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /manager/employees [post]
func (h *ManagerHandler) CreateEmployee(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createIdentityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.identities.CreateEmployee(c.Request().Context(), manager, toIdentityInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toIdentityResponse(view))
}

// ListEmployees handles GET /manager/employees.
//
// @Summary      The caller's employees with their tasks
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   employeeResponse
// @Failure      403  {object}  errorResponse
// @Router       /manager/employees [get]
func (h *ManagerHandler) ListEmployees(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}

	team, err := h.identities.ListEmployees(c.Request().Context(), manager)
	if err != nil {
		return err
	}
	out := make([]employeeResponse, 0, len(team))
	for _, et := range team {
		out = append(out, employeeResponse{
			userResponse: toUserResponse(et.Employee, manager),
			Tasks:        toTaskResponses(et.Tasks),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteEmployee handles DELETE /manager/employees/:id.
//
// @Summary      Delete one of the caller's employees
// @Description  The employee's tasks are kept and become unassigned.
// @Tags         manager
// @Security     BearerAuth
// @Param        id   path  int  true  "Employee id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /manager/employees/{id} [delete]
func (h *ManagerHandler) DeleteEmployee(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.identities.DeleteEmployee(c.Request().Context(), manager, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTask handles POST /manager/tasks.
//
// @Summary      Assign a new task to one of the caller's employees
// @Tags         manager
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /manager/tasks [post]
func (h *ManagerHandler) CreateTask(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), manager, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		EmployeeID:  req.EmployeeID,
	})
	if err != nil {
		return err
	}
	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// ListTasks handles GET /manager/tasks.
//
// @Summary      Tasks issued by the caller
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      403  {object}  errorResponse
// @Router       /manager/tasks [get]
func (h *ManagerHandler) ListTasks(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListIssued(c.Request().Context(), manager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Reassign handles PUT /manager/tasks/:id/assignee.
//
// @Summary      Reassign a task to another of the caller's employees
// @Tags         manager
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Task id"
// @Param        body  body      reassignRequest  true  "New assignee"
// @Success      200   {object}  taskResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /manager/tasks/{id}/assignee [put]
func (h *ManagerHandler) Reassign(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req reassignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Reassign(c.Request().Context(), manager, ports.ReassignInput{
		TaskID:        id,
		NewEmployeeID: req.EmployeeID,
		Reason:        req.Reason,
	})
	if err != nil {
		countConflict(err)
		return err
	}
	metrics.TaskReassignmentsTotal.Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// DeleteTask handles DELETE /manager/tasks/:id.
//
// @Summary      Delete a task issued by the caller
// @Description  The task's history is removed with it; reassignment records are kept.
// @Tags         manager
// @Security     BearerAuth
// @Param        id   path  int  true  "Task id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /manager/tasks/{id} [delete]
func (h *ManagerHandler) DeleteTask(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), manager, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// TaskHistory handles GET /manager/tasks/:id/history.
//
// @Summary      Full history of a task issued by the caller, oldest first
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {array}   historyResponse
// @Failure      404  {object}  errorResponse
// @Router       /manager/tasks/{id}/history [get]
func (h *ManagerHandler) TaskHistory(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.tasks.History(c.Request().Context(), manager, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponses(entries))
}

// TaskReassignments handles GET /manager/tasks/:id/reassignments.
//
// @Summary      Reassignment trail of a task issued by the caller, oldest first
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {array}   reassignmentResponse
// @Failure      404  {object}  errorResponse
// @Router       /manager/tasks/{id}/reassignments [get]
func (h *ManagerHandler) TaskReassignments(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.tasks.Reassignments(c.Request().Context(), manager, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReassignmentResponses(entries))
}

// ListReassignments handles GET /manager/reassignments.
//
// @Summary      Reassignments performed by the caller, newest first
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   reassignmentResponse
// @Failure      403  {object}  errorResponse
// @Router       /manager/reassignments [get]
func (h *ManagerHandler) ListReassignments(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}

	entries, err := h.audit.ReassignmentsByManager(c.Request().Context(), manager.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReassignmentResponses(entries))
}

// Dashboard handles GET /manager/dashboard.
//
// @Summary      Team aggregates for the caller
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  managerDashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /manager/dashboard [get]
func (h *ManagerHandler) Dashboard(c echo.Context) error {
	manager, err := ctxUser(c)
	if err != nil {
		return err
	}

	d, err := h.tasks.Dashboard(c.Request().Context(), manager)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, managerDashboardResponse{
		TeamSize:       d.TeamSize,
		TotalTasks:     d.TotalTasks,
		OpenTasks:      d.OpenTasks,
		CompletedTasks: d.CompletedTasks,
		CompletionRate: d.CompletionRate,
	})
}

func countConflict(err error) {
	if errors.Is(err, domain.ErrConflict) {
		metrics.TaskConflictsTotal.Inc()
	}
}
