package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TasksCollection = "tareas"

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"nombre"`
	Creator   primitive.ObjectID `bson:"creator"`
	CreatedAt time.Time          `bson:"createdAT"`
}

func (d taskDocument) toModel() models.Task {
	return models.Task{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		CreatorID: d.Creator.Hex(),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type TaskMongo struct {
	coll *mongo.Collection
}

func NewTaskMongo(db *mongo.Database) *TaskMongo {
	return &TaskMongo{coll: db.Collection(TasksCollection)}
}

var _ Tasks = (*TaskMongo)(nil)

var newestFirst = bson.D{{Key: "createdAT", Value: -1}, {Key: "_id", Value: -1}}

func (r *TaskMongo) Create(ctx context.Context, t models.Task) (models.Task, error) {
	creator, err := primitive.ObjectIDFromHex(t.CreatorID)
	if err != nil {
		return models.Task{}, fmt.Errorf("creator id %q: %w", t.CreatorID, err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		Name:      t.Name,
		Creator:   creator,
		CreatedAt: t.CreatedAt.UTC().Truncate(time.Millisecond), // BSON dates are millisecond precision
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return doc.toModel(), nil
}

// ListByCreator returns the creator's tasks, newest first. An id that is not
// an ObjectID cannot own anything, so it yields an empty list.
func (r *TaskMongo) ListByCreator(ctx context.Context, creatorID string) ([]models.Task, error) {
	out := make([]models.Task, 0, 16)
	creator, err := primitive.ObjectIDFromHex(creatorID)
	if err != nil {
		return out, nil
	}

	cur, err := r.coll.Find(ctx, bson.D{{Key: "creator", Value: creator}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find tasks for %q: %w", creatorID, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		out = append(out, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskMongo) UpdateName(ctx context.Context, id, creatorID, name string) (models.Task, error) {
	filter, ok := taskFilter(id, creatorID)
	if !ok {
		return models.Task{}, ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "nombre", Value: name}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task %q: %w", id, err)
	}
	return doc.toModel(), nil
}

func (r *TaskMongo) Delete(ctx context.Context, id, creatorID string) (models.Task, error) {
	filter, ok := taskFilter(id, creatorID)
	if !ok {
		return models.Task{}, ErrNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("delete task %q: %w", id, err)
	}
	return doc.toModel(), nil
}

// taskFilter builds the by-id filter, scoped to creatorID when it is set.
// ok is false when either id is not a valid ObjectID.
func taskFilter(id, creatorID string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	filter := bson.D{{Key: "_id", Value: oid}}
	if creatorID != "" {
		creator, err := primitive.ObjectIDFromHex(creatorID)
		if err != nil {
			return nil, false
		}
		filter = append(filter, bson.E{Key: "creator", Value: creator})
	}
	return filter, true
}
