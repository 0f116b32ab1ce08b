package follows

import "context"

// FollowGraph defines the interface for follow relationship operations
type FollowGraph interface {
	Follow(ctx context.Context, followerID, followedID string) (*FollowEdge, error)
	Unfollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowedIDs(ctx context.Context, followerID string) ([]string, error)
}

// FollowStore defines the interface for follow edge storage operations
type FollowStore interface {
	CreateEdge(ctx context.Context, edge *FollowEdge) error
	DeleteEdge(ctx context.Context, followerID, followedID string) (bool, error)
	EdgeExists(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowedIDs(ctx context.Context, followerID string) ([]string, error)
}
