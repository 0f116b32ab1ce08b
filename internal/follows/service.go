package follows

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hchs200771/goodnight-app/internal/users"
)

// FollowServiceImpl implements the FollowGraph interface
type FollowServiceImpl struct {
	store     FollowStore
	userStore users.UserStore
}

// NewFollowService creates a new follow service instance
func NewFollowService(store FollowStore, userStore users.UserStore) *FollowServiceImpl {
	return &FollowServiceImpl{
		store:     store,
		userStore: userStore,
	}
}

// Follow creates a follow edge from followerID to followedID
func (s *FollowServiceImpl) Follow(ctx context.Context, followerID, followedID string) (*FollowEdge, error) {
	if followerID == followedID {
		return nil, NewSelfFollowError(followerID)
	}

	if _, err := s.userStore.GetUser(ctx, followerID); err != nil {
		return nil, err
	}
	if _, err := s.userStore.GetUser(ctx, followedID); err != nil {
		return nil, err
	}

	// Best-effort check; the unique index on (follower_id, followed_id) is the
	// real guard under concurrent follows.
	exists, err := s.store.EdgeExists(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewAlreadyFollowingError(followerID, followedID)
	}

	edge := &FollowEdge{
		UUID:       uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateEdge(ctx, edge); err != nil {
		return nil, err
	}

	return edge, nil
}

// Unfollow removes the follow edge from followerID to followedID
func (s *FollowServiceImpl) Unfollow(ctx context.Context, followerID, followedID string) error {
	if _, err := s.userStore.GetUser(ctx, followerID); err != nil {
		return err
	}
	if _, err := s.userStore.GetUser(ctx, followedID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteEdge(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFollowingError(followerID, followedID)
	}

	return nil
}

// IsFollowing reports whether followerID follows followedID
func (s *FollowServiceImpl) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return s.store.EdgeExists(ctx, followerID, followedID)
}

// ListFollowedIDs returns the IDs of every user that followerID follows
func (s *FollowServiceImpl) ListFollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	return s.store.ListFollowedIDs(ctx, followerID)
}
