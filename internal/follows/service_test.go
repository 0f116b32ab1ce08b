package follows

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hchs200771/goodnight-app/internal/users"
)

type fakeUserStore struct {
	users map[string]*users.User
}

func newFakeUserStore(ids ...string) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]*users.User)}
	for _, id := range ids {
		store.users[id] = &users.User{UUID: uuid.MustParse(id), Name: "user"}
	}
	return store
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *users.User) error {
	f.users[user.UUID.String()] = user
	return nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, userID string) (*users.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, users.NewUserNotFoundError(userID)
	}
	return user, nil
}

func (f *fakeUserStore) GetUsers(ctx context.Context, userIDs []string) (map[string]*users.User, error) {
	result := make(map[string]*users.User)
	for _, id := range userIDs {
		if user, ok := f.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

type fakeFollowStore struct {
	edges map[string]map[string]bool
}

func newFakeFollowStore() *fakeFollowStore {
	return &fakeFollowStore{edges: make(map[string]map[string]bool)}
}

func (f *fakeFollowStore) CreateEdge(ctx context.Context, edge *FollowEdge) error {
	if f.edges[edge.FollowerID] == nil {
		f.edges[edge.FollowerID] = make(map[string]bool)
	}
	if f.edges[edge.FollowerID][edge.FollowedID] {
		return NewAlreadyFollowingError(edge.FollowerID, edge.FollowedID)
	}
	f.edges[edge.FollowerID][edge.FollowedID] = true
	return nil
}

func (f *fakeFollowStore) DeleteEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	if !f.edges[followerID][followedID] {
		return false, nil
	}
	delete(f.edges[followerID], followedID)
	return true, nil
}

func (f *fakeFollowStore) EdgeExists(ctx context.Context, followerID, followedID string) (bool, error) {
	return f.edges[followerID][followedID], nil
}

func (f *fakeFollowStore) ListFollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	for id := range f.edges[followerID] {
		ids = append(ids, id)
	}
	return ids, nil
}

var (
	followerID = uuid.NewString()
	followedID = uuid.NewString()
)

func TestFollow(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a follow edge", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID, followedID))

		edge, err := service.Follow(ctx, followerID, followedID)
		require.NoError(t, err)

		assert.Equal(t, followerID, edge.FollowerID)
		assert.Equal(t, followedID, edge.FollowedID)

		following, err := service.IsFollowing(ctx, followerID, followedID)
		require.NoError(t, err)
		assert.True(t, following)

		// follow edges are directed
		reverse, err := service.IsFollowing(ctx, followedID, followerID)
		require.NoError(t, err)
		assert.False(t, reverse)
	})

	t.Run("rejects self follow", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID))

		_, err := service.Follow(ctx, followerID, followerID)

		var followErr *FollowError
		require.ErrorAs(t, err, &followErr)
		assert.Equal(t, FollowErrorTypeSelfFollow, followErr.Type)
	})

	t.Run("rejects unknown users", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID))

		_, err := service.Follow(ctx, followerID, followedID)

		var userErr *users.UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, users.UserErrorTypeNotFound, userErr.Type)

		_, err = service.Follow(ctx, uuid.NewString(), followerID)
		require.ErrorAs(t, err, &userErr)
	})

	t.Run("rejects duplicate follow", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID, followedID))

		_, err := service.Follow(ctx, followerID, followedID)
		require.NoError(t, err)

		_, err = service.Follow(ctx, followerID, followedID)

		var followErr *FollowError
		require.ErrorAs(t, err, &followErr)
		assert.Equal(t, FollowErrorTypeAlreadyFollowing, followErr.Type)
	})
}

func TestUnfollow(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the follow edge", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID, followedID))

		_, err := service.Follow(ctx, followerID, followedID)
		require.NoError(t, err)

		require.NoError(t, service.Unfollow(ctx, followerID, followedID))

		following, err := service.IsFollowing(ctx, followerID, followedID)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("fails when not following", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID, followedID))

		err := service.Unfollow(ctx, followerID, followedID)

		var followErr *FollowError
		require.ErrorAs(t, err, &followErr)
		assert.Equal(t, FollowErrorTypeNotFollowing, followErr.Type)
	})

	t.Run("fails for unknown target", func(t *testing.T) {
		service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID))

		err := service.Unfollow(ctx, followerID, followedID)

		var userErr *users.UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, users.UserErrorTypeNotFound, userErr.Type)
	})
}

func TestListFollowedIDs(t *testing.T) {
	ctx := context.Background()
	otherID := uuid.NewString()

	service := NewFollowService(newFakeFollowStore(), newFakeUserStore(followerID, followedID, otherID))

	_, err := service.Follow(ctx, followerID, followedID)
	require.NoError(t, err)
	_, err = service.Follow(ctx, followerID, otherID)
	require.NoError(t, err)

	ids, err := service.ListFollowedIDs(ctx, followerID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{followedID, otherID}, ids)

	ids, err = service.ListFollowedIDs(ctx, followedID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
