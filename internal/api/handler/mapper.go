package handler

import (
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// --- Request → Service input ---

func toIdentityInput(req createIdentityRequest) ports.CreateIdentityInput {
	return ports.CreateIdentityInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
}

// --- Domain → Response ---

func toCreatorResponse(u *domain.User) *creatorResponse {
	if u == nil {
		return nil
	}
	return &creatorResponse{ID: u.ID, UUID: u.UUID, Name: u.Name, Username: u.Username, Email: u.Email}
}

func toUserResponse(u *domain.User, creator *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		UUID:      u.UUID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		CreatedBy: toCreatorResponse(creator),
	}
}

func toIdentityResponse(v *ports.IdentityView) userResponse {
	return toUserResponse(v.User, v.Creator)
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		AssignerID:  t.AssignerID,
		Status:      string(t.Status),
		Hours:       t.Hours,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toHistoryResponses(entries []*domain.HistoryEntry) []historyResponse {
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ID:           e.ID,
			TaskID:       e.TaskID,
			ActorID:      e.ActorID,
			StatusBefore: string(e.StatusBefore),
			StatusAfter:  string(e.StatusAfter),
			Hours:        e.Hours,
			Timestamp:    e.Timestamp,
		})
	}
	return out
}

func toReassignmentResponses(entries []*domain.ReassignmentEntry) []reassignmentResponse {
	out := make([]reassignmentResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, reassignmentResponse{
			ID:                 e.ID,
			TaskID:             e.TaskID,
			PreviousAssigneeID: e.PreviousAssigneeID,
			NewAssigneeID:      e.NewAssigneeID,
			ReassignedByID:     e.ReassignedByID,
			Reason:             e.Reason,
			Timestamp:          e.Timestamp,
		})
	}
	return out
}

func toPagination(total int64, page, limit int) paginationResponse {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return paginationResponse{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
