package sleep

import (
	"fmt"
	"time"
)

// SessionError represents errors related to sleep session operations
type SessionError struct {
	Type    string
	UserID  string
	Message string
	Cause   error

	// OpenSessionID and OpenSessionBedTime identify the already open session
	// when Type is SessionErrorTypeAlreadyOpen.
	OpenSessionID      string
	OpenSessionBedTime time.Time
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sleep session error [%s] for user %s: %s (caused by: %v)", e.Type, e.UserID, e.Message, e.Cause)
	}
	return fmt.Sprintf("sleep session error [%s] for user %s: %s", e.Type, e.UserID, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Sleep session error types
const (
	SessionErrorTypeAlreadyOpen     = "already_open_session"
	SessionErrorTypeNoOpenSession   = "no_open_session"
	SessionErrorTypeInvalidWakeTime = "invalid_wake_time"
)

// NewAlreadyOpenSessionError creates an error for a clock-in while a session is open
func NewAlreadyOpenSessionError(userID, sessionID string, bedTime time.Time) *SessionError {
	return &SessionError{
		Type:               SessionErrorTypeAlreadyOpen,
		UserID:             userID,
		Message:            "user already has an ongoing sleep session",
		OpenSessionID:      sessionID,
		OpenSessionBedTime: bedTime,
	}
}

// NewNoOpenSessionError creates an error for a clock-out without an open session
func NewNoOpenSessionError(userID string) *SessionError {
	return &SessionError{
		Type:    SessionErrorTypeNoOpenSession,
		UserID:  userID,
		Message: "user has no ongoing sleep session",
	}
}

// NewInvalidWakeTimeError creates an error for a wake-up time at or before bed time
func NewInvalidWakeTimeError(userID string) *SessionError {
	return &SessionError{
		Type:    SessionErrorTypeInvalidWakeTime,
		UserID:  userID,
		Message: "wake up time must be after bed time",
	}
}
