package feed

import "time"

// previousWeekWindow returns the previous full calendar week relative to now:
// from Monday 00:00:00 of last week through the last instant of its Sunday.
// A fixed window keeps the feed stable for a whole week instead of shifting
// with every request the way a rolling 7-day window would.
func previousWeekWindow(now time.Time) (time.Time, time.Time) {
	start := startOfWeek(now.AddDate(0, 0, -7))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// startOfWeek returns Monday 00:00:00 of the week containing t, in t's location
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
