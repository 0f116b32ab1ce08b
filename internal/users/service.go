package users

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 100

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store UserStore
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
	}
}

// CreateUser creates a new user
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewUserValidationError("", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, NewUserValidationError("", "name must be at most 100 characters")
	}

	now := time.Now()
	user := &User{
		UUID:      uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, NewUserValidationError(userID, "user id is required")
	}
	return s.store.GetUser(ctx, userID)
}
