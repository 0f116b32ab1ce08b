package follows

import (
	"time"

	"github.com/google/uuid"
)

// FollowEdge represents a directed follow relationship between two users.
// FollowerID is the user doing the following, FollowedID the user being followed.
type FollowEdge struct {
	UUID       uuid.UUID `json:"uuid"`
	FollowerID string    `json:"follower_id"`
	FollowedID string    `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
