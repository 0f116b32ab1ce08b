package sleep

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hchs200771/goodnight-app/internal/pagination"
	"github.com/hchs200771/goodnight-app/internal/users"
)

// SessionService implements the SessionManager interface
type SessionService struct {
	store     SessionStore
	userStore users.UserStore

	// now is swapped out in tests for deterministic clocks
	now func() time.Time
}

// NewSessionService creates a new sleep session service
func NewSessionService(store SessionStore, userStore users.UserStore) *SessionService {
	return &SessionService{
		store:     store,
		userStore: userStore,
		now:       time.Now,
	}
}

// WithClock overrides the time source
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// ClockIn opens a new sleep session for the user. It fails when the user
// already has an open session; the check here is best-effort and the partial
// unique index on sleep_records is the real guard under concurrent clock-ins.
func (s *SessionService) ClockIn(ctx context.Context, userID string) (*SleepSession, error) {
	if _, err := s.userStore.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	open, err := s.store.FindOpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, NewAlreadyOpenSessionError(userID, open.UUID.String(), open.BedTime)
	}

	now := s.now()
	session := &SleepSession{
		UUID:      uuid.New(),
		UserID:    userID,
		BedTime:   now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// ClockOut closes the user's open sleep session, computing the duration in
// whole seconds. A wake-up time at or before the bed time (clock skew, time
// travel in tests) is rejected and the session stays open.
func (s *SessionService) ClockOut(ctx context.Context, userID string) (*SleepSession, error) {
	if _, err := s.userStore.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	open, err := s.store.FindOpenSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, NewNoOpenSessionError(userID)
	}

	wakeUpTime := s.now()
	if !wakeUpTime.After(open.BedTime) {
		return nil, NewInvalidWakeTimeError(userID)
	}

	durationInSeconds := int64(wakeUpTime.Sub(open.BedTime) / time.Second)

	return s.store.CloseSession(ctx, open.UUID, wakeUpTime, durationInSeconds)
}

// ListSessions returns the user's sleep sessions ordered by creation time
// descending, with pagination metadata computed over the full count.
func (s *SessionService) ListSessions(ctx context.Context, userID string, page, perPage int) ([]*SleepSession, pagination.Page, error) {
	if _, err := s.userStore.GetUser(ctx, userID); err != nil {
		return nil, pagination.Page{}, err
	}

	totalCount, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	meta := pagination.Paginate(totalCount, page, perPage)

	sessions, err := s.store.ListByUser(ctx, userID, meta.Offset(), meta.PerPage)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	return sessions, meta, nil
}
