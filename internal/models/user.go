package models

import "time"

// User is the authenticated principal. Account creation and login live in an
// external auth service; this backend only resolves ids to rows.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
