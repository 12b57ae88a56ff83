package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

var (
	oldestFirst = bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}
	newestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
)

// AuditRepository stores task history and reassignment entries in two
// append-only collections.
type AuditRepository struct {
	history       *mongo.Collection
	reassignments *mongo.Collection
	historySeq    sequence
	reassignSeq   sequence
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		history:       db.Collection(collectionHistory),
		reassignments: db.Collection(collectionReassignments),
		historySeq:    newSequence(db, collectionHistory),
		reassignSeq:   newSequence(db, collectionReassignments),
	}
}

type historyDoc struct {
	ID           int64     `bson:"_id"`
	TaskID       int64     `bson:"task_id"`
	ActorID      int64     `bson:"actor_id"`
	StatusBefore string    `bson:"status_before"`
	StatusAfter  string    `bson:"status_after"`
	Hours        float64   `bson:"hours"`
	Timestamp    time.Time `bson:"timestamp"`
}

func (d historyDoc) toDomain() *domain.HistoryEntry {
	return &domain.HistoryEntry{
		ID:           d.ID,
		TaskID:       d.TaskID,
		ActorID:      d.ActorID,
		StatusBefore: domain.TaskStatus(d.StatusBefore),
		StatusAfter:  domain.TaskStatus(d.StatusAfter),
		Hours:        d.Hours,
		Timestamp:    d.Timestamp.UTC(),
	}
}

type reassignmentDoc struct {
	ID                 int64     `bson:"_id"`
	TaskID             int64     `bson:"task_id"`
	PreviousAssigneeID *int64    `bson:"previous_assignee_id"`
	NewAssigneeID      int64     `bson:"new_assignee_id"`
	ReassignedByID     int64     `bson:"reassigned_by_id"`
	Reason             string    `bson:"reason,omitempty"`
	Timestamp          time.Time `bson:"timestamp"`
}

func (d reassignmentDoc) toDomain() *domain.ReassignmentEntry {
	return &domain.ReassignmentEntry{
		ID:                 d.ID,
		TaskID:             d.TaskID,
		PreviousAssigneeID: d.PreviousAssigneeID,
		NewAssigneeID:      d.NewAssigneeID,
		ReassignedByID:     d.ReassignedByID,
		Reason:             d.Reason,
		Timestamp:          d.Timestamp.UTC(),
	}
}

func (r *AuditRepository) AppendHistory(ctx context.Context, e *domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.historySeq.next(ctx)
	if err != nil {
		return err
	}
	doc := historyDoc{
		ID:           id,
		TaskID:       e.TaskID,
		ActorID:      e.ActorID,
		StatusBefore: string(e.StatusBefore),
		StatusAfter:  string(e.StatusAfter),
		Hours:        e.Hours,
		Timestamp:    e.Timestamp,
	}
	if _, err := r.history.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	e.ID = id
	return nil
}

func (r *AuditRepository) AppendReassignment(ctx context.Context, e *domain.ReassignmentEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.reassignSeq.next(ctx)
	if err != nil {
		return err
	}
	doc := reassignmentDoc{
		ID:                 id,
		TaskID:             e.TaskID,
		PreviousAssigneeID: e.PreviousAssigneeID,
		NewAssigneeID:      e.NewAssigneeID,
		ReassignedByID:     e.ReassignedByID,
		Reason:             e.Reason,
		Timestamp:          e.Timestamp,
	}
	if _, err := r.reassignments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert reassignment entry: %w", err)
	}
	e.ID = id
	return nil
}

func (r *AuditRepository) DeleteHistoryForTask(ctx context.Context, taskID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.history.DeleteMany(ctx, bson.M{"task_id": taskID}); err != nil {
		return fmt.Errorf("delete history entries: %w", err)
	}
	return nil
}

func (r *AuditRepository) HistoryForTask(ctx context.Context, taskID int64) ([]*domain.HistoryEntry, error) {
	return r.findHistory(ctx, bson.M{"task_id": taskID}, options.Find().SetSort(oldestFirst))
}

func (r *AuditRepository) HistoryByActor(ctx context.Context, actorID int64) ([]*domain.HistoryEntry, error) {
	return r.findHistory(ctx, bson.M{"actor_id": actorID}, options.Find().SetSort(newestFirst))
}

func (r *AuditRepository) ReassignmentsForTask(ctx context.Context, taskID int64) ([]*domain.ReassignmentEntry, error) {
	return r.findReassignments(ctx, bson.M{"task_id": taskID}, options.Find().SetSort(oldestFirst))
}

func (r *AuditRepository) ReassignmentsByManager(ctx context.Context, managerID int64) ([]*domain.ReassignmentEntry, error) {
	return r.findReassignments(ctx, bson.M{"reassigned_by_id": managerID}, options.Find().SetSort(newestFirst))
}

func (r *AuditRepository) ListHistory(ctx context.Context, page ports.Page) ([]*domain.HistoryEntry, int64, error) {
	total, err := r.count(ctx, r.history)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.findHistory(ctx, bson.M{}, pageOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *AuditRepository) ListReassignments(ctx context.Context, page ports.Page) ([]*domain.ReassignmentEntry, int64, error) {
	total, err := r.count(ctx, r.reassignments)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.findReassignments(ctx, bson.M{}, pageOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func pageOptions(page ports.Page) *options.FindOptions {
	page = page.Normalize()
	return options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
}

func (r *AuditRepository) count(ctx context.Context, col *mongo.Collection) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", col.Name(), err)
	}
	return n, nil
}

func (r *AuditRepository) findHistory(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.history.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find history entries: %w", err)
	}
	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode history entries: %w", err)
	}

	out := make([]*domain.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *AuditRepository) findReassignments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.ReassignmentEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.reassignments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reassignment entries: %w", err)
	}
	var docs []reassignmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reassignment entries: %w", err)
	}

	out := make([]*domain.ReassignmentEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
