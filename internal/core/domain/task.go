package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Any status may move to any
// other status; completed tasks can be reopened.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ParseTaskStatus converts s into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.TrimSpace(s))
	switch st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", Invalid(fmt.Sprintf("unknown task status %q", s))
}

// Task is a unit of work owned by an employee and issued by a manager.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  *int64     `json:"assignee_id"` // nil once the assignee has been deleted
	AssignerID  int64      `json:"assigner_id"`
	Status      TaskStatus `json:"status"`
	Hours       float64    `json:"hours"`
	Version     int64      `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask returns a pending task with no hours booked.
func NewTask(title, description string, assigneeID, assignerID int64, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Invalid("title is required")
	}
	return &Task{
		Title:       title,
		Description: description,
		AssigneeID:  &assigneeID,
		AssignerID:  assignerID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AssignedTo reports whether the task currently belongs to employeeID.
func (t *Task) AssignedTo(employeeID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == employeeID
}

// Open reports whether the task still counts as outstanding work.
func (t *Task) Open() bool {
	return t.Status != StatusCompleted
}

// ApplyProgress moves the task to status and adds hoursDelta to the booked
// hours. It returns the history entry describing the change; the caller must
// persist both together.
func (t *Task) ApplyProgress(actorID int64, status TaskStatus, hoursDelta float64, now time.Time) (*HistoryEntry, error) {
	if hoursDelta < 0 {
		return nil, Invalid("hours must not be negative")
	}
	entry := &HistoryEntry{
		TaskID:       t.ID,
		ActorID:      actorID,
		StatusBefore: t.Status,
		StatusAfter:  status,
		Hours:        hoursDelta,
		Timestamp:    now,
	}
	t.Status = status
	t.Hours += hoursDelta
	t.UpdatedAt = now
	t.Version++
	return entry, nil
}

// Reassign hands the task to newAssigneeID. Status and hours are untouched.
func (t *Task) Reassign(managerID, newAssigneeID int64, reason string, now time.Time) *ReassignmentEntry {
	entry := &ReassignmentEntry{
		TaskID:             t.ID,
		PreviousAssigneeID: t.AssigneeID,
		NewAssigneeID:      newAssigneeID,
		ReassignedByID:     managerID,
		Reason:             strings.TrimSpace(reason),
		Timestamp:          now,
	}
	t.AssigneeID = &newAssigneeID
	t.UpdatedAt = now
	t.Version++
	return entry
}

// HistoryEntry is the immutable record of one status/hours change.
type HistoryEntry struct {
	ID           int64      `json:"id"`
	TaskID       int64      `json:"task_id"`
	ActorID      int64      `json:"actor_id"`
	StatusBefore TaskStatus `json:"status_before"`
	StatusAfter  TaskStatus `json:"status_after"`
	Hours        float64    `json:"hours"`
	Timestamp    time.Time  `json:"timestamp"`
}

// ReassignmentEntry is the immutable record of one change of assignee.
type ReassignmentEntry struct {
	ID                 int64     `json:"id"`
	TaskID             int64     `json:"task_id"`
	PreviousAssigneeID *int64    `json:"previous_assignee_id"`
	NewAssigneeID      int64     `json:"new_assignee_id"`
	ReassignedByID     int64     `json:"reassigned_by_id"`
	Reason             string    `json:"reason,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}
