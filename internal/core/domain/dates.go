package domain

import "time"

// Day truncates t to midnight UTC. Rate data is keyed by calendar day; every
// date comparison in the sync pipeline goes through this normal form.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayString formats a date the way it appears in payloads and map keys.
func DayString(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Today returns the current calendar day in UTC.
func Today() time.Time {
	return Day(time.Now())
}
