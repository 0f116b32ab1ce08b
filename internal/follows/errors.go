package follows

import "fmt"

// FollowError represents errors related to follow relationship operations
type FollowError struct {
	Type       string
	FollowerID string
	FollowedID string
	Message    string
	Cause      error
}

func (e *FollowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("follow error [%s] for %s -> %s: %s (caused by: %v)", e.Type, e.FollowerID, e.FollowedID, e.Message, e.Cause)
	}
	return fmt.Sprintf("follow error [%s] for %s -> %s: %s", e.Type, e.FollowerID, e.FollowedID, e.Message)
}

func (e *FollowError) Unwrap() error {
	return e.Cause
}

// Follow error types
const (
	FollowErrorTypeSelfFollow       = "self_follow"
	FollowErrorTypeAlreadyFollowing = "already_following"
	FollowErrorTypeNotFollowing     = "not_following"
)

// NewSelfFollowError creates an error for when a user tries to follow themselves
func NewSelfFollowError(userID string) *FollowError {
	return &FollowError{
		Type:       FollowErrorTypeSelfFollow,
		FollowerID: userID,
		FollowedID: userID,
		Message:    "cannot follow yourself",
	}
}

// NewAlreadyFollowingError creates an error for when the follow edge already exists
func NewAlreadyFollowingError(followerID, followedID string) *FollowError {
	return &FollowError{
		Type:       FollowErrorTypeAlreadyFollowing,
		FollowerID: followerID,
		FollowedID: followedID,
		Message:    "already following this user",
	}
}

// NewNotFollowingError creates an error for unfollowing a user that is not followed
func NewNotFollowingError(followerID, followedID string) *FollowError {
	return &FollowError{
		Type:       FollowErrorTypeNotFollowing,
		FollowerID: followerID,
		FollowedID: followedID,
		Message:    "not following this user",
	}
}
