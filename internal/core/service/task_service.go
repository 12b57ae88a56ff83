package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// TaskService implements the task lifecycle. Hours are accumulated: each
// update adds its delta to the running total and its history entry records
// that delta.
type TaskService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	audit  ports.AuditRepository
	tx     ports.Transactor
	now    func() time.Time
	log    zerolog.Logger
	serial ports.TaskSerializer
}

func NewTaskService(
	tasks ports.TaskRepository,
	users ports.UserRepository,
	audit ports.AuditRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{tasks: tasks, users: users, audit: audit, tx: tx, now: time.Now, log: log, serial: inline{}}
}

// WithSerializer routes progress updates, reassignments and deletions of a
// task through serial. The version check on update still guards against
// writers in other processes.
func (s *TaskService) WithSerializer(serial ports.TaskSerializer) *TaskService {
	s.serial = serial
	return s
}

// WithClock replaces the time source.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Create assigns a new pending task to one of the manager's employees.
func (s *TaskService) Create(ctx context.Context, manager *domain.User, in ports.CreateTaskInput) (*domain.Task, error) {
	employee, err := findEmployeeOf(ctx, s.users, manager.ID, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(in.Title, in.Description, employee.ID, manager.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Info().Int64("task_id", task.ID).Int64("employee_id", employee.ID).Int64("manager_id", manager.ID).Msg("task assigned")
	return task, nil
}

// UpdateProgress applies an employee's status/hours change and records it in
// the task history within one transaction.
func (s *TaskService) UpdateProgress(ctx context.Context, employee *domain.User, in ports.UpdateProgressInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.serial.Do(ctx, in.TaskID, func(ctx context.Context) error {
		var err error
		task, err = s.updateProgress(ctx, employee, in)
		return err
	})
	return task, err
}

func (s *TaskService) updateProgress(ctx context.Context, employee *domain.User, in ports.UpdateProgressInput) (*domain.Task, error) {
	status, err := domain.ParseTaskStatus(in.Status)
	if err != nil {
		return nil, err
	}
	var delta float64
	if in.HoursDelta != nil {
		delta = *in.HoursDelta
	}

	task, err := s.tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.AssignedTo(employee.ID) {
		return nil, domain.ErrTaskNotFound
	}

	expected := task.Version
	entry, err := task.ApplyProgress(employee.ID, status, delta, s.now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.audit.AppendHistory(ctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return s.tasks.Update(ctx, task, expected)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("task_id", task.ID).
		Int64("employee_id", employee.ID).
		Str("from", string(entry.StatusBefore)).
		Str("to", string(entry.StatusAfter)).
		Float64("hours_delta", delta).
		Msg("task progress updated")
	return task, nil
}

// Reassign moves a task issued by manager to another of its employees and
// records the change within one transaction.
func (s *TaskService) Reassign(ctx context.Context, manager *domain.User, in ports.ReassignInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.serial.Do(ctx, in.TaskID, func(ctx context.Context) error {
		var err error
		task, err = s.reassign(ctx, manager, in)
		return err
	})
	return task, err
}

func (s *TaskService) reassign(ctx context.Context, manager *domain.User, in ports.ReassignInput) (*domain.Task, error) {
	task, err := s.issuedTask(ctx, manager, in.TaskID)
	if err != nil {
		return nil, err
	}
	employee, err := findEmployeeOf(ctx, s.users, manager.ID, in.NewEmployeeID)
	if err != nil {
		return nil, err
	}

	expected := task.Version
	entry := task.Reassign(manager.ID, employee.ID, in.Reason, s.now().UTC())

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The employee may have been deleted since the lookup above.
		if _, err := findEmployeeOf(ctx, s.users, manager.ID, employee.ID); err != nil {
			return err
		}
		if err := s.tasks.Update(ctx, task, expected); err != nil {
			return err
		}
		if err := s.audit.AppendReassignment(ctx, entry); err != nil {
			return fmt.Errorf("append reassignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("task_id", task.ID).
		Int64("manager_id", manager.ID).
		Int64("new_employee_id", employee.ID).
		Msg("task reassigned")
	return task, nil
}

// Delete removes a task issued by manager together with its history.
// Reassignment entries are kept.
func (s *TaskService) Delete(ctx context.Context, manager *domain.User, taskID int64) error {
	return s.serial.Do(ctx, taskID, func(ctx context.Context) error {
		return s.delete(ctx, manager, taskID)
	})
}

func (s *TaskService) delete(ctx context.Context, manager *domain.User, taskID int64) error {
	task, err := s.issuedTask(ctx, manager, taskID)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.audit.DeleteHistoryForTask(ctx, task.ID); err != nil {
			return fmt.Errorf("delete history: %w", err)
		}
		return s.tasks.Delete(ctx, task.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("task_id", task.ID).Int64("manager_id", manager.ID).Msg("task deleted")
	return nil
}

// ListAssigned returns the tasks currently assigned to employee.
func (s *TaskService) ListAssigned(ctx context.Context, employee *domain.User) ([]*domain.Task, error) {
	return s.tasks.ListByAssignee(ctx, employee.ID)
}

// ListIssued returns the tasks manager has issued.
func (s *TaskService) ListIssued(ctx context.Context, manager *domain.User) ([]*domain.Task, error) {
	return s.tasks.ListByAssigner(ctx, manager.ID)
}

// History returns the change history of a task issued by manager.
func (s *TaskService) History(ctx context.Context, manager *domain.User, taskID int64) ([]*domain.HistoryEntry, error) {
	task, err := s.issuedTask(ctx, manager, taskID)
	if err != nil {
		return nil, err
	}
	return s.audit.HistoryForTask(ctx, task.ID)
}

// Reassignments returns the reassignment trail of a task issued by manager.
func (s *TaskService) Reassignments(ctx context.Context, manager *domain.User, taskID int64) ([]*domain.ReassignmentEntry, error) {
	task, err := s.issuedTask(ctx, manager, taskID)
	if err != nil {
		return nil, err
	}
	return s.audit.ReassignmentsForTask(ctx, task.ID)
}

// Dashboard aggregates the manager's team and issued tasks.
func (s *TaskService) Dashboard(ctx context.Context, manager *domain.User) (*ports.Dashboard, error) {
	team, err := s.users.CountCreatedBy(ctx, manager.ID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByAssigner(ctx, manager.ID)
	if err != nil {
		return nil, err
	}

	d := &ports.Dashboard{TeamSize: team, TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Open() {
			d.OpenTasks++
		} else {
			d.CompletedTasks++
		}
	}
	if d.TotalTasks > 0 {
		d.CompletionRate = float64(d.CompletedTasks) / float64(d.TotalTasks)
	}
	return d, nil
}

func (s *TaskService) issuedTask(ctx context.Context, manager *domain.User, taskID int64) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	if task.AssignerID != manager.ID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

var _ ports.TaskService = (*TaskService)(nil)

// inline runs fn on the caller's goroutine.
type inline struct{}

func (inline) Do(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
