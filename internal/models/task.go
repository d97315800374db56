package models

import "time"

// Task is a named item owned by the user who created it.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
}
