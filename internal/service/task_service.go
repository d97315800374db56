package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_api/internal/logger"
	"task_api/internal/models"
	"task_api/internal/repository"
)

type TaskService struct {
	tasks            repository.Tasks
	cache            TaskCache
	enforceOwnership bool
	log              *logger.Logger
	now              func() time.Time
}

// NewTaskService builds the task service. cache and log may be nil.
func NewTaskService(tasks repository.Tasks, cache TaskCache, enforceOwnership bool, log *logger.Logger) *TaskService {
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TaskService{
		tasks:            tasks,
		cache:            cache,
		enforceOwnership: enforceOwnership,
		log:              log,
		now:              time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, caller models.Identity, name string) (models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Task{}, ErrEmptyName
	}
	t, err := s.tasks.Create(ctx, models.Task{
		Name:      name,
		CreatorID: caller.UserID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	s.invalidate(ctx, caller.UserID)
	return t, nil
}

// ListMine returns the caller's tasks, newest first. No tasks is an empty
// slice, not an error.
func (s *TaskService) ListMine(ctx context.Context, caller models.Identity) ([]models.Task, error) {
	if cached, err := s.cache.GetTasks(ctx, caller.UserID); err == nil {
		return cached, nil
	}

	// The version is read before the store so a write landing in between
	// makes the fill below a no-op instead of caching a stale list.
	version, verErr := s.cache.Version(ctx, caller.UserID)

	tasks, err := s.tasks.ListByCreator(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTasksNotFound, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	if verErr != nil {
		s.log.Warnw("task_cache_version_failed", "user_id", caller.UserID, "err", verErr)
		return tasks, nil
	}
	if err := s.cache.SetTasks(ctx, caller.UserID, version, tasks); err != nil {
		s.log.Debugw("task_cache_fill_skipped", "user_id", caller.UserID, "err", err)
	}
	return tasks, nil
}

// Update renames a task. Creator and creation time are left untouched.
func (s *TaskService) Update(ctx context.Context, caller models.Identity, id, name string) (models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Task{}, ErrEmptyName
	}
	t, err := s.tasks.UpdateName(ctx, id, s.ownerFilter(caller), name)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	s.invalidate(ctx, t.CreatorID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, caller models.Identity, id string) (models.Task, error) {
	t, err := s.tasks.Delete(ctx, id, s.ownerFilter(caller))
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	s.invalidate(ctx, t.CreatorID)
	return t, nil
}

// invalidate drops userID's cached list. A failure leaves the old list
// readable until the cache TTL expires.
func (s *TaskService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Errorw("task_cache_invalidate_failed", "user_id", userID, "err", err)
	}
}

// ownerFilter is the creator id mutations are scoped to; empty means any.
func (s *TaskService) ownerFilter(caller models.Identity) string {
	if !s.enforceOwnership {
		return ""
	}
	return caller.UserID
}

type noopCache struct{}

var errNoCache = errors.New("cache disabled")

func (noopCache) GetTasks(context.Context, string) ([]models.Task, error) { return nil, errNoCache }
func (noopCache) Version(context.Context, string) (int64, error) { return 0, nil }
func (noopCache) SetTasks(context.Context, string, int64, []models.Task) error { return nil }
func (noopCache) Invalidate(context.Context, string) error { return nil }
