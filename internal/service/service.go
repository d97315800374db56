package service

import (
	"context"
	"time"

	"task_api/internal/logger"
	"task_api/internal/models"
	"task_api/internal/repository"
)

// AuthResult is what a successful register or login hands back to the client.
type AuthResult struct {
	ID       string
	Username string
	Token    string
}

type Authorization interface {
	Register(ctx context.Context, email, password, username string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	ParseToken(accessToken string) (models.Identity, error)
}

// Tasks exposes task CRUD for an authenticated caller.
type Tasks interface {
	Create(ctx context.Context, caller models.Identity, name string) (models.Task, error)
	ListMine(ctx context.Context, caller models.Identity) ([]models.Task, error)
	Update(ctx context.Context, caller models.Identity, id, name string) (models.Task, error)
	Delete(ctx context.Context, caller models.Identity, id string) (models.Task, error)
}

// TaskCache is an optional read-through cache for a user's task list.
// A miss must be reported as an error; callers fall back to the store.
// Invalidate advances the user's version, and SetTasks must refuse to store
// a list read under an older version.
type TaskCache interface {
	GetTasks(ctx context.Context, userID string) ([]models.Task, error)
	Version(ctx context.Context, userID string) (int64, error)
	SetTasks(ctx context.Context, userID string, version int64, tasks []models.Task) error
	Invalidate(ctx context.Context, userID string) error
}

// Config carries the settings the services need from the process config.
type Config struct {
	TokenSecret []byte
	TokenTTL    time.Duration
	BcryptCost  int
	// EnforceOwnership scopes update/delete to the caller's own tasks.
	// Disabled, any authenticated caller may mutate any task by id.
	EnforceOwnership bool
	// Logger receives cache failures. Nil discards them.
	Logger *logger.Logger
}

type Service struct {
	Authorization
	Tasks
}

// NewService wires the repository layer into the concrete services.
// cache may be nil.
func NewService(repos *repository.Repository, cfg Config, cache TaskCache) *Service {
	tokens := NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	return &Service{
		Authorization: NewAuthService(repos.Users, NewPasswordHasher(cfg.BcryptCost), tokens),
		Tasks:         NewTaskService(repos.Tasks, cache, cfg.EnforceOwnership, cfg.Logger),
	}
}
