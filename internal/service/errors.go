package service

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP statuses;
// internal causes are joined to them with %w and only logged.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrLoginFailed        = errors.New("login failed")
	ErrInvalidToken       = errors.New("invalid token")

	ErrEmptyName     = errors.New("task name is empty")
	ErrCreateFailed  = errors.New("task not created")
	ErrTasksNotFound = errors.New("tasks not found")
	ErrUpdateFailed  = errors.New("task not updated")
	ErrDeleteFailed  = errors.New("task not deleted")
)
