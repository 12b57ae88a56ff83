package ports

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// CreateIdentityInput carries the fields needed to register an identity.
// Role must match the kind of identity the caller is creating.
type CreateIdentityInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// IdentityView is a user together with the identity that created it.
type IdentityView struct {
	User    *domain.User
	Creator *domain.User
}

// ManagerDetail is the admin view of a single manager.
type ManagerDetail struct {
	IdentityView
	TeamSize    int64
	IssuedTasks []*domain.Task
}

// EmployeeTasks pairs an employee with the tasks currently assigned to it.
type EmployeeTasks struct {
	Employee *domain.User
	Tasks    []*domain.Task
}

// IdentityService manages managers and employees.
type IdentityService interface {
	CreateManager(ctx context.Context, admin *domain.User, in CreateIdentityInput) (*IdentityView, error)
	ListManagers(ctx context.Context) ([]*IdentityView, error)
	ManagerDetail(ctx context.Context, managerID int64) (*ManagerDetail, error)
	DeleteManager(ctx context.Context, managerID int64) error

	CreateEmployee(ctx context.Context, manager *domain.User, in CreateIdentityInput) (*IdentityView, error)
	ListEmployees(ctx context.Context, manager *domain.User) ([]EmployeeTasks, error)
	DeleteEmployee(ctx context.Context, manager *domain.User, employeeID int64) error

	// Bootstrap creates a root admin unless the username already exists.
	// The boolean reports whether a user was created.
	Bootstrap(ctx context.Context, in CreateIdentityInput) (*domain.User, bool, error)
}
