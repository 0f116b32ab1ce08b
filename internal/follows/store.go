package follows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FollowSchema represents the follow_relationships table schema in PostgreSQL
type FollowSchema struct {
	bun.BaseModel `bun:"table:follow_relationships,alias:fr"`

	UUID       uuid.UUID `bun:"uuid,pk,type:uuid" json:"uuid"`
	FollowerID uuid.UUID `bun:"follower_id,notnull,type:uuid" json:"follower_id"`
	FollowedID uuid.UUID `bun:"followed_id,notnull,type:uuid" json:"followed_id"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// FollowIndexes are created by the storage migration step. The unique index
// enforces at most one edge per (follower, followed) pair.
var FollowIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_follow_relationships_follower_followed ON follow_relationships(follower_id, followed_id)",
	"CREATE INDEX IF NOT EXISTS idx_follow_relationships_followed ON follow_relationships(followed_id)",
}

// PostgresStore implements the FollowStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL follow store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CreateEdge creates a follow edge
func (s *PostgresStore) CreateEdge(ctx context.Context, edge *FollowEdge) error {
	schema, err := edgeToSchema(edge)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return NewAlreadyFollowingError(edge.FollowerID, edge.FollowedID)
		}
		return fmt.Errorf("failed to create follow edge: %w", err)
	}

	return nil
}

// DeleteEdge removes a follow edge, reporting whether one existed
func (s *PostgresStore) DeleteEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	result, err := s.db.NewDelete().
		Model((*FollowSchema)(nil)).
		Where("follower_id = ?", followerID).
		Where("followed_id = ?", followedID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow edge: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// EdgeExists reports whether a follow edge exists
func (s *PostgresStore) EdgeExists(ctx context.Context, followerID, followedID string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*FollowSchema)(nil)).
		Where("follower_id = ?", followerID).
		Where("followed_id = ?", followedID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}

	return exists, nil
}

// ListFollowedIDs returns the followed user IDs for a follower
func (s *PostgresStore) ListFollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	var followedIDs []string
	err := s.db.NewSelect().
		Model((*FollowSchema)(nil)).
		Column("followed_id").
		Where("follower_id = ?", followerID).
		Scan(ctx, &followedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed ids: %w", err)
	}

	return followedIDs, nil
}

func edgeToSchema(edge *FollowEdge) (*FollowSchema, error) {
	followerID, err := uuid.Parse(edge.FollowerID)
	if err != nil {
		return nil, fmt.Errorf("invalid follower id %q: %w", edge.FollowerID, err)
	}
	followedID, err := uuid.Parse(edge.FollowedID)
	if err != nil {
		return nil, fmt.Errorf("invalid followed id %q: %w", edge.FollowedID, err)
	}

	return &FollowSchema{
		UUID:       edge.UUID,
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  edge.CreatedAt,
	}, nil
}
