package users

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can record sleep and follow other users
type User struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name string `json:"name"`
}
