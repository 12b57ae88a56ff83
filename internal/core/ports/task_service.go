package ports

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// CreateTaskInput carries the data for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	EmployeeID  int64
}

// UpdateProgressInput carries an employee's status/hours update.
// HoursDelta is added to the task's booked hours; nil means zero.
type UpdateProgressInput struct {
	TaskID     int64
	Status     string
	HoursDelta *float64
}

// ReassignInput carries a manager's reassignment request.
type ReassignInput struct {
	TaskID        int64
	NewEmployeeID int64
	Reason        string
}

// Dashboard holds the aggregates shown to a manager.
type Dashboard struct {
	TeamSize       int64
	TotalTasks     int
	OpenTasks      int
	CompletedTasks int
	CompletionRate float64 // completed / total, 0 when there are no tasks
}

// TaskService owns the task lifecycle. Every mutation that changes status,
// hours or assignee commits together with its audit entry.
type TaskService interface {
	Create(ctx context.Context, manager *domain.User, in CreateTaskInput) (*domain.Task, error)
	UpdateProgress(ctx context.Context, employee *domain.User, in UpdateProgressInput) (*domain.Task, error)
	Reassign(ctx context.Context, manager *domain.User, in ReassignInput) (*domain.Task, error)
	Delete(ctx context.Context, manager *domain.User, taskID int64) error

	ListAssigned(ctx context.Context, employee *domain.User) ([]*domain.Task, error)
	ListIssued(ctx context.Context, manager *domain.User) ([]*domain.Task, error)
	History(ctx context.Context, manager *domain.User, taskID int64) ([]*domain.HistoryEntry, error)
	Reassignments(ctx context.Context, manager *domain.User, taskID int64) ([]*domain.ReassignmentEntry, error)
	Dashboard(ctx context.Context, manager *domain.User) (*Dashboard, error)
}
