package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"task_api/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	tasksKeyPrefix   = "tasks:"
	versionKeyPrefix = "tasks_ver:"

	// versionTTL must outlive any single request so a reader never sees
	// its version reset to zero between reading it and filling the list.
	versionTTL = 24 * time.Hour
)

var (
	// ErrCacheMiss is returned when no list is cached for the user.
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleVersion is returned by SetTasks when the list was invalidated
	// after the caller read its version.
	ErrStaleVersion = errors.New("cached list version changed")
)

func tasksKey(userID string) string {
	return tasksKeyPrefix + userID
}

func versionKey(userID string) string {
	return versionKeyPrefix + userID
}

// GetTasks returns the cached task list of userID or ErrCacheMiss.
func (c *Cache) GetTasks(ctx context.Context, userID string) ([]models.Task, error) {
	raw, err := c.client.Get(ctx, tasksKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decodeTasks(raw)
}

// Version returns the invalidation counter of userID's list. A user whose
// list was never invalidated is at version zero.
func (c *Cache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

// SetTasks caches the task list of userID for the configured TTL, but only
// while the list is still at version. The version key is watched so an
// Invalidate racing with the write aborts it.
func (c *Cache) SetTasks(ctx context.Context, userID string, version int64, tasks []models.Task) error {
	raw, err := encodeTasks(tasks)
	if err != nil {
		return err
	}

	verKey := versionKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tasksKey(userID), raw, c.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleVersion), errors.Is(err, redis.TxFailedErr):
		return ErrStaleVersion
	default:
		return fmt.Errorf("failed to cache tasks: %w", err)
	}
}

// Invalidate bumps the version of userID's list and drops the cached copy
// in one transaction.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	verKey := versionKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, tasksKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate tasks: %w", err)
	}
	return nil
}

func encodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return raw, nil
}

func decodeTasks(raw []byte) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode cached tasks: %w", err)
	}
	return tasks, nil
}
