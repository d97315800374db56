package repository

import (
	"context"
	"database/sql"
	"errors"

	"task_api/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store-level errors shared by every backend.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Users interface {
	// Create stores u and returns it with its generated ID.
	// A unique-email conflict is reported as ErrDuplicateEmail.
	Create(ctx context.Context, u models.User) (models.User, error)
	// GetByEmail returns (nil, nil) if no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Tasks persists tasks. For UpdateName and Delete an empty creatorID means
// "any owner"; otherwise the task must belong to creatorID or ErrNotFound
// is returned.
type Tasks interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.Task, error)
	UpdateName(ctx context.Context, id, creatorID, name string) (models.Task, error)
	Delete(ctx context.Context, id, creatorID string) (models.Task, error)
}

// Pinger reports store reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Repository struct {
	Users  Users
	Tasks  Tasks
	Health Pinger
}

func NewSQLiteRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:  NewUserSQLite(db),
		Tasks:  NewTaskSQLite(db),
		Health: sqlPinger{db: db},
	}
}

func NewMongoRepository(db *mongo.Database) *Repository {
	return &Repository{
		Users:  NewUserMongo(db),
		Tasks:  NewTaskMongo(db),
		Health: mongoPinger{db: db},
	}
}

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type mongoPinger struct{ db *mongo.Database }

func (p mongoPinger) Ping(ctx context.Context) error { return p.db.Client().Ping(ctx, nil) }
