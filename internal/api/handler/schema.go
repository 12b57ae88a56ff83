package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// loginRequest accepts form-encoded or JSON credentials.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Identities ---

type createIdentityRequest struct {
	Name     string `json:"name"     form:"name"     validate:"required,max=100"`
	Username string `json:"username" form:"username" validate:"required,max=50"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role"     form:"role"     validate:"required,oneof=admin manager employee"`
}

// creatorResponse is the public summary of the identity that created another.
type creatorResponse struct {
	ID       int64  `json:"id"`
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userResponse struct {
	ID        int64            `json:"id"`
	UUID      string           `json:"uuid"`
	Name      string           `json:"name"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy *creatorResponse `json:"created_by"`
}

type managerDetailResponse struct {
	userResponse
	TeamSize    int64          `json:"team_size"`
	IssuedTasks []taskResponse `json:"issued_tasks"`
}

type employeeResponse struct {
	userResponse
	Tasks []taskResponse `json:"tasks"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string `json:"title"       form:"title"       validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	EmployeeID  int64  `json:"employee_id" form:"employee_id" validate:"required,gt=0"`
}

// updateProgressRequest carries the new status and the hours worked since
// the previous update.
type updateProgressRequest struct {
	Status     string   `json:"status"      form:"status"      validate:"required,oneof=pending in_progress completed"`
	HoursDelta *float64 `json:"hours_delta" form:"hours_delta" validate:"omitempty,gte=0"`
}

type reassignRequest struct {
	EmployeeID int64  `json:"employee_id" form:"employee_id" validate:"required,gt=0"`
	Reason     string `json:"reason"      form:"reason"      validate:"max=500"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AssigneeID  *int64    `json:"assignee_id"`
	AssignerID  int64     `json:"assigner_id"`
	Status      string    `json:"status"`
	Hours       float64   `json:"hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Audit ---

type historyResponse struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	ActorID      int64     `json:"actor_id"`
	StatusBefore string    `json:"status_before"`
	StatusAfter  string    `json:"status_after"`
	Hours        float64   `json:"hours"`
	Timestamp    time.Time `json:"timestamp"`
}

type reassignmentResponse struct {
	ID                 int64     `json:"id"`
	TaskID             int64     `json:"task_id"`
	PreviousAssigneeID *int64    `json:"previous_assignee_id"`
	NewAssigneeID      int64     `json:"new_assignee_id"`
	ReassignedByID     int64     `json:"reassigned_by_id"`
	Reason             string    `json:"reason,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type historyListResponse struct {
	Data       []historyResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type reassignmentListResponse struct {
	Data       []reassignmentResponse `json:"data"`
	Pagination paginationResponse     `json:"pagination"`
}

// --- Dashboards ---

type adminDashboardResponse struct {
	Managers            []userResponse         `json:"managers"`
	RecentReassignments []reassignmentResponse `json:"recent_reassignments"`
}

type managerDashboardResponse struct {
	TeamSize       int64   `json:"team_size"`
	TotalTasks     int     `json:"total_tasks"`
	OpenTasks      int     `json:"open_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

type employeeDashboardResponse struct {
	Tasks         []taskResponse    `json:"tasks"`
	RecentUpdates []historyResponse `json:"recent_updates"`
}
