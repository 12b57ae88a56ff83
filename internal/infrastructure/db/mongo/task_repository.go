package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamtask/tasktracker/internal/core/domain"
)

type TaskRepository struct {
	col *mongo.Collection
	seq sequence
	now func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), seq: newSequence(db, collectionTasks), now: time.Now}
}

type taskDoc struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	AssigneeID  *int64    `bson:"assignee_id"` // stored as null once unassigned
	AssignerID  int64     `bson:"assigner_id"`
	Status      string    `bson:"status"`
	Hours       float64   `bson:"hours"`
	Version     int64     `bson:"version"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	return taskDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		AssignerID:  t.AssignerID,
		Status:      string(t.Status),
		Hours:       t.Hours,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDoc) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		AssigneeID:  d.AssigneeID,
		AssignerID:  d.AssignerID,
		Status:      domain.TaskStatus(d.Status),
		Hours:       d.Hours,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := toTaskDoc(t)
	doc.ID = id

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, employeeID int64) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"assignee_id": employeeID})
}

func (r *TaskRepository) ListByAssigner(ctx context.Context, managerID int64) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"assigner_id": managerID})
}

func (r *TaskRepository) CountByAssigner(ctx context.Context, managerID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"assigner_id": managerID})
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// Update writes the mutable fields only if the stored version still equals
// expectedVersion.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": t.ID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"status":      string(t.Status),
		"hours":       t.Hours,
		"assignee_id": t.AssigneeID,
		"updated_at":  t.UpdatedAt,
		"version":     t.Version,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": t.ID})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return domain.ErrConcurrentUpdate
}

func (r *TaskRepository) UnassignAll(ctx context.Context, employeeID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"assignee_id": employeeID},
		bson.M{
			"$set": bson.M{"assignee_id": nil, "updated_at": r.now().UTC()},
			"$inc": bson.M{"version": int64(1)},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("unassign tasks: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
