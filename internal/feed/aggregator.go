package feed

import (
	"context"
	"time"

	"github.com/hchs200771/goodnight-app/internal/pagination"
	"github.com/hchs200771/goodnight-app/internal/sleep"
	"github.com/hchs200771/goodnight-app/internal/users"
)

// FollowedLister is the slice of the follow graph the feed needs
type FollowedLister interface {
	ListFollowedIDs(ctx context.Context, followerID string) ([]string, error)
}

// Aggregator produces the ranked, paginated friends sleep feed. It resolves
// the follow graph first and only queries the session store when the user
// follows somebody, so an empty graph costs a single query.
type Aggregator struct {
	graph        FollowedLister
	sessionStore sleep.SessionStore
	userStore    users.UserStore

	// now is swapped out in tests for deterministic default windows
	now func() time.Time
}

// NewAggregator creates a new friends feed aggregator
func NewAggregator(graph FollowedLister, sessionStore sleep.SessionStore, userStore users.UserStore) *Aggregator {
	return &Aggregator{
		graph:        graph,
		sessionStore: sessionStore,
		userStore:    userStore,
		now:          time.Now,
	}
}

// WithClock overrides the time source
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// FriendsFeed returns one page of completed sleep sessions of the users that
// req.FollowerID follows, within the resolved window, ranked by duration
// descending.
func (a *Aggregator) FriendsFeed(ctx context.Context, req *FeedRequest) (*FeedResult, error) {
	if req.FollowerID == "" {
		return nil, NewInvalidArgumentError("follower_id", "follower_id is required")
	}

	start, end := previousWeekWindow(a.now())
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if !start.Before(end) {
		return nil, NewInvalidArgumentError("start_date", "start_date must be before end_date")
	}

	follower, err := a.userStore.GetUser(ctx, req.FollowerID)
	if err != nil {
		return nil, err
	}

	result := &FeedResult{
		UserID:   follower.UUID.String(),
		UserName: follower.Name,
		Records:  []FeedRecord{},
		TimeRange: TimeRange{
			StartDate: start,
			EndDate:   end,
		},
	}

	// Phase 1: resolve who the user follows. An empty set short-circuits
	// before any session query is issued.
	followedIDs, err := a.graph.ListFollowedIDs(ctx, req.FollowerID)
	if err != nil {
		return nil, err
	}
	if len(followedIDs) == 0 {
		result.Pagination = pagination.Paginate(0, req.Page, req.PerPage)
		return result, nil
	}

	// Phase 2: query the followed users' completed sessions in the window.
	// The total is counted independently so pagination never distorts it.
	totalCount, err := a.sessionStore.CountCompletedInWindow(ctx, followedIDs, start, end)
	if err != nil {
		return nil, err
	}

	meta := pagination.Paginate(totalCount, req.Page, req.PerPage)
	result.Pagination = meta

	sessions, err := a.sessionStore.ListCompletedInWindow(ctx, followedIDs, start, end, meta.Offset(), meta.PerPage)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(sessions))
	seen := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		if !seen[session.UserID] {
			seen[session.UserID] = true
			ownerIDs = append(ownerIDs, session.UserID)
		}
	}

	owners, err := a.userStore.GetUsers(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	for _, session := range sessions {
		record := FeedRecord{
			ID:                session.UUID.String(),
			UserID:            session.UserID,
			BedTime:           session.BedTime,
			WakeUpTime:        session.WakeUpTime,
			DurationInSeconds: session.DurationInSeconds,
			DurationInHours:   session.DurationInHours(),
			CreatedAt:         session.CreatedAt,
		}
		if owner, ok := owners[session.UserID]; ok {
			record.UserName = owner.Name
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}
