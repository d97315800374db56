package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_api/internal/models"

	"github.com/google/uuid"
)

type TaskSQLite struct {
	db *sql.DB
}

func NewTaskSQLite(db *sql.DB) *TaskSQLite {
	return &TaskSQLite{db: db}
}

var _ Tasks = (*TaskSQLite)(nil)

// created_at is stored as unix nanoseconds so ordering is numeric.
const (
	taskColumns = `id, name, creator_id, created_at`

	insertTaskSQL = `INSERT INTO tasks (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)`

	selectTasksByCreatorSQL = `SELECT ` + taskColumns + ` FROM tasks
		WHERE creator_id = ? ORDER BY created_at DESC, rowid DESC`

	updateTaskNameSQL    = `UPDATE tasks SET name = ? WHERE id = ? RETURNING ` + taskColumns
	updateOwnTaskNameSQL = `UPDATE tasks SET name = ? WHERE id = ? AND creator_id = ? RETURNING ` + taskColumns
	deleteTaskSQL        = `DELETE FROM tasks WHERE id = ? RETURNING ` + taskColumns
	deleteOwnTaskSQL     = `DELETE FROM tasks WHERE id = ? AND creator_id = ? RETURNING ` + taskColumns
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t       models.Task
		created int64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.CreatorID, &created); err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = time.Unix(0, created).UTC()
	return t, nil
}

// Create inserts t, assigning an ID and a creation time when they are unset.
func (r *TaskSQLite) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	if _, err := r.db.ExecContext(ctx, insertTaskSQL, t.ID, t.Name, t.CreatorID, t.CreatedAt.UnixNano()); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// ListByCreator returns the creator's tasks, newest first.
func (r *TaskSQLite) ListByCreator(ctx context.Context, creatorID string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, selectTasksByCreatorSQL, creatorID)
	if err != nil {
		return nil, fmt.Errorf("select tasks for %q: %w", creatorID, err)
	}
	defer rows.Close()

	out := make([]models.Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskSQLite) UpdateName(ctx context.Context, id, creatorID, name string) (models.Task, error) {
	var row *sql.Row
	if creatorID == "" {
		row = r.db.QueryRowContext(ctx, updateTaskNameSQL, name, id)
	} else {
		row = r.db.QueryRowContext(ctx, updateOwnTaskNameSQL, name, id, creatorID)
	}
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task %q: %w", id, err)
	}
	return t, nil
}

func (r *TaskSQLite) Delete(ctx context.Context, id, creatorID string) (models.Task, error) {
	var row *sql.Row
	if creatorID == "" {
		row = r.db.QueryRowContext(ctx, deleteTaskSQL, id)
	} else {
		row = r.db.QueryRowContext(ctx, deleteOwnTaskSQL, id, creatorID)
	}
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("delete task %q: %w", id, err)
	}
	return t, nil
}
