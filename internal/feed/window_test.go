package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousWeekWindow(t *testing.T) {
	tests := []struct {
		name          string
		now           time.Time
		expectedStart time.Time
	}{
		{
			name:          "midweek",
			now:           time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC), // Wednesday
			expectedStart: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),  // previous Monday
		},
		{
			name:          "on a monday",
			now:           time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "on a sunday",
			now:           time.Date(2026, 8, 23, 23, 59, 59, 0, time.UTC),
			expectedStart: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := previousWeekWindow(tt.now)

			assert.Equal(t, tt.expectedStart, start)
			assert.Equal(t, tt.expectedStart.AddDate(0, 0, 7).Add(-time.Nanosecond), end)
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())
			assert.True(t, end.Before(startOfWeek(tt.now)))
		})
	}
}

func TestPreviousWeekWindowIsStableAcrossTheWeek(t *testing.T) {
	// every request during the same week sees the same window
	monday := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC)

	startA, endA := previousWeekWindow(monday)
	startB, endB := previousWeekWindow(saturday)

	assert.Equal(t, startA, startB)
	assert.Equal(t, endA, endB)
}
