package service

import (
	"context"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// AuditService exposes read-only queries over task history and
// reassignment entries. Entries are only written by TaskService, which also
// serves the per-task trails scoped to the issuing manager.
type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) HistoryByActor(ctx context.Context, actorID int64) ([]*domain.HistoryEntry, error) {
	return s.repo.HistoryByActor(ctx, actorID)
}

func (s *AuditService) ReassignmentsByManager(ctx context.Context, managerID int64) ([]*domain.ReassignmentEntry, error) {
	return s.repo.ReassignmentsByManager(ctx, managerID)
}

// AllHistory returns one page of every history entry, newest first.
func (s *AuditService) AllHistory(ctx context.Context, page ports.Page) (*ports.HistoryPage, error) {
	page = page.Normalize()
	items, total, err := s.repo.ListHistory(ctx, page)
	if err != nil {
		return nil, err
	}
	return &ports.HistoryPage{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// AllReassignments returns one page of every reassignment entry, newest first.
func (s *AuditService) AllReassignments(ctx context.Context, page ports.Page) (*ports.ReassignmentPage, error) {
	page = page.Normalize()
	items, total, err := s.repo.ListReassignments(ctx, page)
	if err != nil {
		return nil, err
	}
	return &ports.ReassignmentPage{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

var _ ports.AuditTrail = (*AuditService)(nil)
