package sleep

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Session statuses
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// SleepSession represents a single sleep record. A nil WakeUpTime means the
// session is still open; DurationInSeconds is set exactly once, when the
// session is closed.
type SleepSession struct {
	UUID              uuid.UUID  `json:"uuid"`
	UserID            string     `json:"user_id"`
	BedTime           time.Time  `json:"bed_time"`
	WakeUpTime        *time.Time `json:"wake_up_time,omitempty"`
	DurationInSeconds *int64     `json:"duration_in_seconds,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Ongoing reports whether the session is still open
func (s *SleepSession) Ongoing() bool {
	return s.WakeUpTime == nil
}

// Status returns the session status string
func (s *SleepSession) Status() string {
	if s.Ongoing() {
		return StatusOngoing
	}
	return StatusCompleted
}

// DurationInHours returns the sleep duration in hours rounded to two decimal
// places, or nil for an open session
func (s *SleepSession) DurationInHours() *float64 {
	if s.DurationInSeconds == nil {
		return nil
	}
	hours := math.Round(float64(*s.DurationInSeconds)/3600*100) / 100
	return &hours
}
