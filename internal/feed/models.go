package feed

import (
	"time"

	"github.com/hchs200771/goodnight-app/internal/pagination"
)

// FeedRequest represents a friends sleep feed query. StartDate and EndDate
// default to the previous full calendar week when nil.
type FeedRequest struct {
	FollowerID string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PerPage    int
}

// FeedRecord is one completed sleep session of a followed user
type FeedRecord struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	UserName          string     `json:"user_name"`
	BedTime           time.Time  `json:"bed_time"`
	WakeUpTime        *time.Time `json:"wake_up_time"`
	DurationInSeconds *int64     `json:"duration_in_seconds"`
	DurationInHours   *float64   `json:"duration_in_hours"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TimeRange is the resolved query window returned with every feed page
type TimeRange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// FeedResult is one page of the friends sleep feed
type FeedResult struct {
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name"`
	Records    []FeedRecord    `json:"friends_sleep_records"`
	TimeRange  TimeRange       `json:"time_range"`
	Pagination pagination.Page `json:"pagination"`
}
