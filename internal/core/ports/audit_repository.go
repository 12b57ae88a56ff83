package ports

import (
	"context"
	"math"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage keeps Skip from overflowing.
	MaxPage = math.MaxInt / MaxPageLimit
)

// Page selects a window of a descending audit listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into its valid range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip is the number of entries before the page.
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// AuditRepository stores task history and reassignment entries. Entries are
// append-only; the only removal is DeleteHistoryForTask, used when the parent
// task is deleted.
type AuditRepository interface {
	AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error
	AppendReassignment(ctx context.Context, entry *domain.ReassignmentEntry) error
	DeleteHistoryForTask(ctx context.Context, taskID int64) error

	// Per-task listings are ordered oldest first, per-actor and global
	// listings newest first.
	HistoryForTask(ctx context.Context, taskID int64) ([]*domain.HistoryEntry, error)
	HistoryByActor(ctx context.Context, actorID int64) ([]*domain.HistoryEntry, error)
	ReassignmentsForTask(ctx context.Context, taskID int64) ([]*domain.ReassignmentEntry, error)
	ReassignmentsByManager(ctx context.Context, managerID int64) ([]*domain.ReassignmentEntry, error)
	ListHistory(ctx context.Context, page Page) ([]*domain.HistoryEntry, int64, error)
	ListReassignments(ctx context.Context, page Page) ([]*domain.ReassignmentEntry, int64, error)
}
