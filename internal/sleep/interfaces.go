package sleep

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hchs200771/goodnight-app/internal/pagination"
)

// SessionManager defines the interface for sleep session operations
type SessionManager interface {
	ClockIn(ctx context.Context, userID string) (*SleepSession, error)
	ClockOut(ctx context.Context, userID string) (*SleepSession, error)
	ListSessions(ctx context.Context, userID string, page, perPage int) ([]*SleepSession, pagination.Page, error)
}

// SessionStore defines the interface for sleep session storage operations
type SessionStore interface {
	CreateSession(ctx context.Context, session *SleepSession) error
	// FindOpenSession returns the user's open session, or nil when there is none.
	FindOpenSession(ctx context.Context, userID string) (*SleepSession, error)
	// CloseSession persists the wake-up time and duration for an open session.
	CloseSession(ctx context.Context, sessionID uuid.UUID, wakeUpTime time.Time, durationInSeconds int64) (*SleepSession, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*SleepSession, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// ListCompletedInWindow returns completed sessions for the given users whose
	// creation time falls within [start, end], ordered by duration descending.
	ListCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time, offset, limit int) ([]*SleepSession, error)
	CountCompletedInWindow(ctx context.Context, userIDs []string, start, end time.Time) (int, error)
}
