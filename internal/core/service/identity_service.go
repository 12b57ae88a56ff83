package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// IdentityService manages the creator hierarchy: admins create managers,
// managers create employees.
type IdentityService struct {
	users       ports.UserRepository
	tasks       ports.TaskRepository
	tx          ports.Transactor
	credentials *CredentialStore
	validate    *validator.Validate
	now         func() time.Time
	log         zerolog.Logger
}

func NewIdentityService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	tx ports.Transactor,
	credentials *CredentialStore,
	log zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		users:       users,
		tasks:       tasks,
		tx:          tx,
		credentials: credentials,
		validate:    validator.New(),
		now:         time.Now,
		log:         log,
	}
}

// CreateManager registers a manager created by admin.
func (s *IdentityService) CreateManager(ctx context.Context, admin *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error) {
	if in.Role != domain.RoleManager {
		return nil, domain.Invalid("role must be manager")
	}
	user, err := s.create(ctx, in, &admin.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("manager_id", user.ID).Int64("admin_id", admin.ID).Msg("manager created")
	return &ports.IdentityView{User: user, Creator: admin}, nil
}

// CreateEmployee registers an employee created by manager.
func (s *IdentityService) CreateEmployee(ctx context.Context, manager *domain.User, in ports.CreateIdentityInput) (*ports.IdentityView, error) {
	if in.Role != domain.RoleEmployee {
		return nil, domain.Invalid("role must be employee")
	}
	user, err := s.create(ctx, in, &manager.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("employee_id", user.ID).Int64("manager_id", manager.ID).Msg("employee created")
	return &ports.IdentityView{User: user, Creator: manager}, nil
}

// Bootstrap creates a root admin with no creator. An existing username is
// left untouched.
func (s *IdentityService) Bootstrap(ctx context.Context, in ports.CreateIdentityInput) (*domain.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, in.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("bootstrap admin: %w", err)
	}

	in.Role = domain.RoleAdmin
	user, err := s.create(ctx, in, nil)
	if err != nil {
		return nil, false, err
	}
	s.log.Info().Int64("admin_id", user.ID).Str("username", user.Username).Msg("bootstrap admin created")
	return user, true, nil
}

func (s *IdentityService) create(ctx context.Context, in ports.CreateIdentityInput, creatorID *int64) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Name == "":
		return nil, domain.Invalid("name is required")
	case in.Username == "":
		return nil, domain.Invalid("username is required")
	case in.Password == "":
		return nil, domain.Invalid("password is required")
	}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return nil, domain.Invalid("email must be a valid email")
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check identity uniqueness: %w", err)
	}
	if taken {
		return nil, domain.ErrUserExists
	}

	hash, err := s.credentials.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UUID:         uuid.NewString(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedByID:  creatorID,
		CreatedAt:    s.now().UTC(),
	}
	// The unique indexes still reject a racing duplicate with ErrUserExists.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListManagers returns every manager with its creator.
func (s *IdentityService) ListManagers(ctx context.Context) ([]*ports.IdentityView, error) {
	managers, err := s.users.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		return nil, err
	}

	creators := make(map[int64]*domain.User)
	out := make([]*ports.IdentityView, 0, len(managers))
	for _, m := range managers {
		view := &ports.IdentityView{User: m}
		if m.CreatedByID != nil {
			creator, ok := creators[*m.CreatedByID]
			if !ok {
				creator, err = s.lookupCreator(ctx, *m.CreatedByID)
				if err != nil {
					return nil, err
				}
				creators[*m.CreatedByID] = creator
			}
			view.Creator = creator
		}
		out = append(out, view)
	}
	return out, nil
}

// ManagerDetail returns a manager with its team size and issued tasks.
func (s *IdentityService) ManagerDetail(ctx context.Context, managerID int64) (*ports.ManagerDetail, error) {
	manager, err := s.findManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	detail := &ports.ManagerDetail{IdentityView: ports.IdentityView{User: manager}}
	if manager.CreatedByID != nil {
		if detail.Creator, err = s.lookupCreator(ctx, *manager.CreatedByID); err != nil {
			return nil, err
		}
	}
	if detail.TeamSize, err = s.users.CountCreatedBy(ctx, manager.ID); err != nil {
		return nil, err
	}
	if detail.IssuedTasks, err = s.tasks.ListByAssigner(ctx, manager.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteManager removes a manager that no longer has employees or issued tasks.
func (s *IdentityService) DeleteManager(ctx context.Context, managerID int64) error {
	manager, err := s.findManager(ctx, managerID)
	if err != nil {
		return err
	}

	team, err := s.users.CountCreatedBy(ctx, manager.ID)
	if err != nil {
		return err
	}
	issued, err := s.tasks.CountByAssigner(ctx, manager.ID)
	if err != nil {
		return err
	}
	if team > 0 || issued > 0 {
		return domain.ErrManagerHasDependents
	}

	if err := s.users.Delete(ctx, manager.ID); err != nil {
		return err
	}
	s.log.Info().Int64("manager_id", manager.ID).Msg("manager deleted")
	return nil
}

// ListEmployees returns the manager's employees with their current tasks.
func (s *IdentityService) ListEmployees(ctx context.Context, manager *domain.User) ([]ports.EmployeeTasks, error) {
	employees, err := s.users.ListCreatedBy(ctx, manager.ID)
	if err != nil {
		return nil, err
	}

	out := make([]ports.EmployeeTasks, 0, len(employees))
	for _, e := range employees {
		tasks, err := s.tasks.ListByAssignee(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.EmployeeTasks{Employee: e, Tasks: tasks})
	}
	return out, nil
}

// DeleteEmployee removes one of the manager's employees. Tasks still
// assigned to it are kept with their assignee cleared.
func (s *IdentityService) DeleteEmployee(ctx context.Context, manager *domain.User, employeeID int64) error {
	employee, err := s.findEmployeeOf(ctx, manager.ID, employeeID)
	if err != nil {
		return err
	}

	var unassigned int64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.tasks.UnassignAll(ctx, employee.ID)
		if err != nil {
			return err
		}
		unassigned = n
		return s.users.Delete(ctx, employee.ID)
	})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	s.log.Info().
		Int64("employee_id", employee.ID).
		Int64("manager_id", manager.ID).
		Int64("tasks_unassigned", unassigned).
		Msg("employee deleted")
	return nil
}

func (s *IdentityService) findManager(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrManagerNotFound
		}
		return nil, err
	}
	if user.Role != domain.RoleManager {
		return nil, domain.ErrManagerNotFound
	}
	return user, nil
}

func (s *IdentityService) findEmployeeOf(ctx context.Context, managerID, employeeID int64) (*domain.User, error) {
	return findEmployeeOf(ctx, s.users, managerID, employeeID)
}

// lookupCreator tolerates creators that have since been deleted.
func (s *IdentityService) lookupCreator(ctx context.Context, id int64) (*domain.User, error) {
	creator, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return creator, nil
}

// findEmployeeOf returns employeeID only if it is an employee created by
// managerID; anything else is reported as not found.
func findEmployeeOf(ctx context.Context, users ports.UserRepository, managerID, employeeID int64) (*domain.User, error) {
	user, err := users.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	if user.Role != domain.RoleEmployee || !user.CreatedBy(managerID) {
		return nil, domain.ErrEmployeeNotFound
	}
	return user, nil
}

var _ ports.IdentityService = (*IdentityService)(nil)
