package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// recentUpdates caps the history shown on the employee dashboard.
const recentUpdates = 10

// EmployeeHandler serves the employee-only routes.
type EmployeeHandler struct {
	tasks ports.TaskService
	audit ports.AuditTrail
}

func NewEmployeeHandler(tasks ports.TaskService, audit ports.AuditTrail) *EmployeeHandler {
	return &EmployeeHandler{tasks: tasks, audit: audit}
}

// ListTasks handles GET /employee/tasks.
//
// @Summary      Tasks assigned to the caller
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      403  {object}  errorResponse
// @Router       /employee/tasks [get]
func (h *EmployeeHandler) ListTasks(c echo.Context) error {
	employee, err := ctxUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListAssigned(c.Request().Context(), employee)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// UpdateProgress handles PATCH /employee/tasks/:id.
//
// @Summary      Update status and book hours on an assigned task
// @Description  hours_delta is added to the task's booked hours.
// @Tags         employee
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Task id"
// @Param        body  body      updateProgressRequest  true  "Progress"
// @Success      200   {object}  taskResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /employee/tasks/{id} [patch]
func (h *EmployeeHandler) UpdateProgress(c echo.Context) error {
	employee, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateProgressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.UpdateProgress(c.Request().Context(), employee, ports.UpdateProgressInput{
		TaskID:     id,
		Status:     req.Status,
		HoursDelta: req.HoursDelta,
	})
	if err != nil {
		countConflict(err)
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(string(task.Status)).Inc()
	if req.HoursDelta != nil {
		metrics.TaskHoursTotal.Add(*req.HoursDelta)
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// ListHistory handles GET /employee/history.
//
// @Summary      Updates made by the caller, newest first
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   historyResponse
// @Failure      403  {object}  errorResponse
// @Router       /employee/history [get]
func (h *EmployeeHandler) ListHistory(c echo.Context) error {
	employee, err := ctxUser(c)
	if err != nil {
		return err
	}

	entries, err := h.audit.HistoryByActor(c.Request().Context(), employee.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponses(entries))
}

// Dashboard handles GET /employee/dashboard.
//
// @Summary      Employee landing data
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  employeeDashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /employee/dashboard [get]
func (h *EmployeeHandler) Dashboard(c echo.Context) error {
	employee, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	tasks, err := h.tasks.ListAssigned(ctx, employee)
	if err != nil {
		return err
	}
	entries, err := h.audit.HistoryByActor(ctx, employee.ID)
	if err != nil {
		return err
	}
	if len(entries) > recentUpdates {
		entries = entries[:recentUpdates]
	}
	return c.JSON(http.StatusOK, employeeDashboardResponse{
		Tasks:         toTaskResponses(tasks),
		RecentUpdates: toHistoryResponses(entries),
	})
}
