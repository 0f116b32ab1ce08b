package feed

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hchs200771/goodnight-app/internal/sleep"
	"github.com/hchs200771/goodnight-app/internal/users"
)

type fakeUserStore struct {
	users map[string]*users.User
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

type fakeGraph struct {
	followed map[string][]string
}

func (f *fakeGraph) ListFollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	return f.followed[followerID], nil
}

// fakeSessionStore applies the same filter and ordering the SQL store does
type fakeSessionStore struct {
	sessions   []*sleep.SleepSession
	queryCount int
}

func (f *fakeSessionStore) matching(userIDs []string, start, end time.Time) []*sleep.SleepSession {
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	var matched []*sleep.SleepSession
	for _, session := range f.sessions {
		if !wanted[session.UserID] || session.Ongoing() {
			continue
		}
		if session.CreatedAt.Before(start) || session.CreatedAt.After(end) {
			continue
		}
		matched = append(matched, session)
	}

	sort.Slice(matched, func(i, j int) bool {
		if *matched[i].DurationInSeconds != *matched[j].DurationInSeconds {
			return *matched[i].DurationInSeconds > *matched[j].DurationInSeconds
		}
		return strings.Compare(matched[i].UUID.String(), matched[j].UUID.String()) < 0
	})

	return matched
}

func (f *fakeSessionStore) ListCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time, offset, limit int) ([]*sleep.SleepSession, error) {
	f.queryCount++
	matched := f.matching(userIDs, start, end)
	if offset >= len(matched) {
		return nil, nil
	}
	last := offset + limit
	if last > len(matched) {
		last = len(matched)
	}
	return matched[offset:last], nil
}

func (f *fakeSessionStore) CountCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time) (int, error) {
	f.queryCount++
	return len(f.matching(userIDs, start, end)), nil
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, session *sleep.SleepSession) error {
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionStore) FindOpenSession(ctx context.Context, userID string) (*sleep.SleepSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) CloseSession(ctx context.Context, sessionID uuid.UUID, wakeUpTime time.Time, durationInSeconds int64) (*sleep.SleepSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*sleep.SleepSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) CountByUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

// 2026-08-26 is a Wednesday; the previous calendar week runs Monday
// 2026-08-17 through Sunday 2026-08-23.
var (
	testNow       = time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)
	lastWeekStart = time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	lastWeekEnd   = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
)

func newUser(name string) *users.User {
	return &users.User{UUID: uuid.New(), Name: name}
}

func completedSession(owner *users.User, createdAt time.Time, durationInSeconds int64) *sleep.SleepSession {
	bedTime := createdAt
	wakeUpTime := createdAt.Add(time.Duration(durationInSeconds) * time.Second)
	return &sleep.SleepSession{
		UUID:              uuid.New(),
		UserID:            owner.UUID.String(),
		BedTime:           bedTime,
		WakeUpTime:        &wakeUpTime,
		DurationInSeconds: &durationInSeconds,
		CreatedAt:         createdAt,
	}
}

type feedFixture struct {
	aggregator   *Aggregator
	sessionStore *fakeSessionStore
	follower     *users.User
	friend1      *users.User
	friend2      *users.User
}

// newFeedFixture builds the canonical setup: the follower follows friend1 and
// friend2; friend2 slept 9h, friend1 slept 8h and 7h, all within last week;
// a non-followed user slept 10h in the window and friend1 has a current-week
// session that must not appear.
func newFeedFixture() *feedFixture {
	follower := newUser("Alice")
	friend1 := newUser("Bob")
	friend2 := newUser("Carol")
	nonFriend := newUser("Mallory")

	userStore := &fakeUserStore{users: map[string]*users.User{
		follower.UUID.String():  follower,
		friend1.UUID.String():   friend1,
		friend2.UUID.String():   friend2,
		nonFriend.UUID.String(): nonFriend,
	}}

	graph := &fakeGraph{followed: map[string][]string{
		follower.UUID.String(): {friend1.UUID.String(), friend2.UUID.String()},
	}}

	inWindow := lastWeekStart.Add(24 * time.Hour)
	sessionStore := &fakeSessionStore{
		sessions: []*sleep.SleepSession{
			completedSession(friend2, inWindow, 32400),            // 9h
			completedSession(friend1, inWindow, 28800),            // 8h
			completedSession(friend1, inWindow.Add(time.Hour), 25200), // 7h
			completedSession(nonFriend, inWindow, 36000),          // 10h, not followed
			completedSession(friend1, testNow.Add(-time.Hour), 30000), // current week
		},
	}

	aggregator := NewAggregator(graph, sessionStore, userStore).WithClock(func() time.Time { return testNow })

	return &feedFixture{
		aggregator:   aggregator,
		sessionStore: sessionStore,
		follower:     follower,
		friend1:      friend1,
		friend2:      friend2,
	}
}

func TestFriendsFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks friends sessions by duration descending within last week", func(t *testing.T) {
		fx := newFeedFixture()

		result, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: fx.follower.UUID.String()})
		require.NoError(t, err)

		assert.Equal(t, fx.follower.UUID.String(), result.UserID)
		assert.Equal(t, "Alice", result.UserName)
		assert.Equal(t, lastWeekStart, result.TimeRange.StartDate)
		assert.Equal(t, lastWeekEnd, result.TimeRange.EndDate)

		require.Len(t, result.Records, 3)
		durations := make([]int64, 0, len(result.Records))
		for _, record := range result.Records {
			require.NotNil(t, record.DurationInSeconds)
			durations = append(durations, *record.DurationInSeconds)
		}
		assert.Equal(t, []int64{32400, 28800, 25200}, durations)

		// adjacent pairs never increase
		for i := 1; i < len(durations); i++ {
			assert.GreaterOrEqual(t, durations[i-1], durations[i])
		}

		assert.Equal(t, "Carol", result.Records[0].UserName)
		assert.Equal(t, "Bob", result.Records[1].UserName)

		assert.Equal(t, 3, result.Pagination.TotalCount)
		assert.Equal(t, 1, result.Pagination.TotalPages)
	})

	t.Run("paginates over the ranked set keeping the full total", func(t *testing.T) {
		fx := newFeedFixture()
		followerID := fx.follower.UUID.String()

		page1, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: followerID, Page: 1, PerPage: 2})
		require.NoError(t, err)
		require.Len(t, page1.Records, 2)
		assert.Equal(t, int64(32400), *page1.Records[0].DurationInSeconds)
		assert.Equal(t, int64(28800), *page1.Records[1].DurationInSeconds)
		assert.Equal(t, 3, page1.Pagination.TotalCount)
		assert.Equal(t, 2, page1.Pagination.TotalPages)
		assert.True(t, page1.Pagination.HasNextPage)
		assert.False(t, page1.Pagination.HasPrevPage)

		page2, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: followerID, Page: 2, PerPage: 2})
		require.NoError(t, err)
		require.Len(t, page2.Records, 1)
		assert.Equal(t, int64(25200), *page2.Records[0].DurationInSeconds)
		assert.False(t, page2.Pagination.HasNextPage)
		assert.True(t, page2.Pagination.HasPrevPage)
	})

	t.Run("page beyond range yields empty slice with stable metadata", func(t *testing.T) {
		fx := newFeedFixture()

		result, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{
			FollowerID: fx.follower.UUID.String(),
			Page:       3,
			PerPage:    2,
		})
		require.NoError(t, err)

		assert.Empty(t, result.Records)
		assert.Equal(t, 3, result.Pagination.TotalCount)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		assert.Equal(t, 3, result.Pagination.CurrentPage)
		assert.False(t, result.Pagination.HasNextPage)
		assert.True(t, result.Pagination.HasPrevPage)
	})

	t.Run("user with no follows short-circuits without a session query", func(t *testing.T) {
		fx := newFeedFixture()
		loner := newUser("Dave")
		fx.aggregator.userStore.(*fakeUserStore).users[loner.UUID.String()] = loner

		result, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: loner.UUID.String()})
		require.NoError(t, err)

		assert.Empty(t, result.Records)
		assert.Equal(t, 0, result.Pagination.TotalCount)
		assert.Equal(t, 0, result.Pagination.TotalPages)
		assert.Equal(t, 0, fx.sessionStore.queryCount)
	})

	t.Run("missing follower id is an invalid argument", func(t *testing.T) {
		fx := newFeedFixture()

		_, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{})

		var argErr *InvalidArgumentError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, "follower_id is required", argErr.Message)
	})

	t.Run("start at or after end fails before any query", func(t *testing.T) {
		fx := newFeedFixture()
		start := lastWeekStart
		end := lastWeekStart

		_, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{
			FollowerID: fx.follower.UUID.String(),
			StartDate:  &start,
			EndDate:    &end,
		})

		var argErr *InvalidArgumentError
		require.ErrorAs(t, err, &argErr)
		assert.Equal(t, "start_date must be before end_date", argErr.Message)
		assert.Equal(t, 0, fx.sessionStore.queryCount)
	})

	t.Run("unknown follower is not found", func(t *testing.T) {
		fx := newFeedFixture()

		_, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: uuid.NewString()})

		var userErr *users.UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, users.UserErrorTypeNotFound, userErr.Type)
	})

	t.Run("explicit window overrides the default", func(t *testing.T) {
		fx := newFeedFixture()
		start := testNow.Add(-2 * time.Hour)
		end := testNow

		result, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{
			FollowerID: fx.follower.UUID.String(),
			StartDate:  &start,
			EndDate:    &end,
		})
		require.NoError(t, err)

		// only friend1's current-week session falls in this window
		require.Len(t, result.Records, 1)
		assert.Equal(t, int64(30000), *result.Records[0].DurationInSeconds)
		assert.Equal(t, start, result.TimeRange.StartDate)
		assert.Equal(t, end, result.TimeRange.EndDate)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		fx := newFeedFixture()
		edge := completedSession(fx.friend2, lastWeekStart, 1000)
		fx.sessionStore.sessions = append(fx.sessionStore.sessions, edge)

		result, err := fx.aggregator.FriendsFeed(ctx, &FeedRequest{FollowerID: fx.follower.UUID.String()})
		require.NoError(t, err)

		assert.Equal(t, 4, result.Pagination.TotalCount)
	})
}
