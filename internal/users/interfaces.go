package users

import "context"

// UserService defines the interface for user operations
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

// UserStore defines the interface for user storage operations
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	// GetUsers returns the found users keyed by ID; missing IDs are omitted.
	GetUsers(ctx context.Context, userIDs []string) (map[string]*User, error)
}
