package ports

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

// HistoryPage is one page of the global history listing.
type HistoryPage struct {
	Items []*domain.HistoryEntry
	Total int64
	Page  int
	Limit int
}

// ReassignmentPage is one page of the global reassignment listing.
type ReassignmentPage struct {
	Items []*domain.ReassignmentEntry
	Total int64
	Page  int
	Limit int
}

// AuditTrail is the read-only query surface over audit entries.
type AuditTrail interface {
	HistoryByActor(ctx context.Context, actorID int64) ([]*domain.HistoryEntry, error)
	ReassignmentsByManager(ctx context.Context, managerID int64) ([]*domain.ReassignmentEntry, error)
	AllHistory(ctx context.Context, page Page) (*HistoryPage, error)
	AllReassignments(ctx context.Context, page Page) (*ReassignmentPage, error)
}
