package domain

import "time"

// Character es una persona con prompt de sistema, ya sea del catálogo base
// (is_default=true, sin dueño) o creada por un usuario.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	IsDefault bool      `json:"is_default"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
