package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"task_api/internal/models"

	"github.com/google/uuid"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQLite)(nil)

const (
	insertUserSQL        = `INSERT INTO users (id, email, username, password_hash) VALUES (?, ?, ?, ?)`
	selectUserByEmailSQL = `SELECT id, email, username, password_hash FROM users WHERE email = ?`
)

// Create inserts a new user with a fresh UUID.
func (r *UserSQLite) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Email, u.Username, u.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return u, nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByEmailSQL, email).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return &u, nil
}

// isUniqueViolation matches SQLite's constraint error text; the driver does
// not expose a typed error through database/sql wrappers like sqlmock.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
