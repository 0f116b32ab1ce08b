package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserSchema represents the users table schema in PostgreSQL
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid" json:"uuid"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// UserIndexes are created by the storage migration step
var UserIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)",
}

// PostgresStore implements the UserStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL user store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CreateUser creates a new user
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	schema := &UserSchema{
		UUID:      user.UUID,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	_, err := s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewUserNotFoundError(userID)
	}

	var schema UserSchema
	err = s.db.NewSelect().
		Model(&schema).
		Where("uuid = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewUserNotFoundError(userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return schemaToUser(schema), nil
}

// GetUsers retrieves users by ID, keyed by ID. IDs that do not resolve are
// silently omitted from the result.
func (s *PostgresStore) GetUsers(ctx context.Context, userIDs []string) (map[string]*User, error) {
	result := make(map[string]*User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(userIDs))
	for _, userID := range userIDs {
		id, err := uuid.Parse(userID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Where("uuid IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, schema := range schemas {
		result[schema.UUID.String()] = schemaToUser(schema)
	}
	return result, nil
}

func schemaToUser(schema UserSchema) *User {
	return &User{
		UUID:      schema.UUID,
		Name:      schema.Name,
		CreatedAt: schema.CreatedAt,
		UpdatedAt: schema.UpdatedAt,
	}
}
