package ports

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByAssignee(ctx context.Context, employeeID int64) ([]*domain.Task, error)
	ListByAssigner(ctx context.Context, managerID int64) ([]*domain.Task, error)
	CountByAssigner(ctx context.Context, managerID int64) (int64, error)
	// Update stores status, hours, assignee, updated_at and version only if the
	// stored version still equals expectedVersion; otherwise it returns
	// domain.ErrConcurrentUpdate.
	Update(ctx context.Context, task *domain.Task, expectedVersion int64) error
	// UnassignAll clears the assignee of every task owned by employeeID.
	UnassignAll(ctx context.Context, employeeID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
