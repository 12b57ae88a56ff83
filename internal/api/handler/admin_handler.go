package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamtask/tasktracker/internal/core/ports"
)

// AdminHandler serves the admin-only routes.
type AdminHandler struct {
	identities ports.IdentityService
	audit      ports.AuditTrail
}

func NewAdminHandler(identities ports.IdentityService, audit ports.AuditTrail) *AdminHandler {
	return &AdminHandler{identities: identities, audit: audit}
}

// CreateManager handles POST /admin/managers.
//
// @Summary      Create a manager
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIdentityRequest  true  "Manager details (role must be manager)"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/managers [post]
func (h *AdminHandler) CreateManager(c echo.Context) error {
	admin, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createIdentityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.identities.CreateManager(c.Request().Context(), admin, toIdentityInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toIdentityResponse(view))
}

// ListManagers handles GET /admin/managers.
//
// @Summary      List managers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/managers [get]
func (h *AdminHandler) ListManagers(c echo.Context) error {
	views, err := h.identities.ListManagers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIdentityResponses(views))
}

// GetManager handles GET /admin/managers/:id.
//
// @Summary      Manager detail
// @Description  Includes the team size and every task the manager issued.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Manager id"
// @Success      200  {object}  managerDetailResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/managers/{id} [get]
func (h *AdminHandler) GetManager(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.identities.ManagerDetail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, managerDetailResponse{
		userResponse: toIdentityResponse(&detail.IdentityView),
		TeamSize:     detail.TeamSize,
		IssuedTasks:  toTaskResponses(detail.IssuedTasks),
	})
}

// DeleteManager handles DELETE /admin/managers/:id.
//
// @Summary      Delete a manager
// @Description  Fails with 409 while the manager still has employees or issued tasks.
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Manager id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /admin/managers/{id} [delete]
func (h *AdminHandler) DeleteManager(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.identities.DeleteManager(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReassignments handles GET /admin/reassignments.
//
// @Summary      All reassignments, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  reassignmentListResponse
// @Failure      403    {object}  errorResponse
// @Router       /admin/reassignments [get]
func (h *AdminHandler) ListReassignments(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return err
	}

	res, err := h.audit.AllReassignments(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reassignmentListResponse{
		Data:       toReassignmentResponses(res.Items),
		Pagination: toPagination(res.Total, res.Page, res.Limit),
	})
}

// ListHistory handles GET /admin/history.
//
// @Summary      All task history entries, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  historyListResponse
// @Failure      403    {object}  errorResponse
// @Router       /admin/history [get]
func (h *AdminHandler) ListHistory(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return err
	}

	res, err := h.audit.AllHistory(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyListResponse{
		Data:       toHistoryResponses(res.Items),
		Pagination: toPagination(res.Total, res.Page, res.Limit),
	})
}

// Dashboard handles GET /admin/dashboard.
//
// @Summary      Admin landing data
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminDashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	views, err := h.identities.ListManagers(ctx)
	if err != nil {
		return err
	}
	recent, err := h.audit.AllReassignments(ctx, ports.Page{Page: 1, Limit: 10})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminDashboardResponse{
		Managers:            toIdentityResponses(views),
		RecentReassignments: toReassignmentResponses(recent.Items),
	})
}

func toIdentityResponses(views []*ports.IdentityView) []userResponse {
	out := make([]userResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toIdentityResponse(v))
	}
	return out
}
