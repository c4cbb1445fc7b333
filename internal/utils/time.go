package utils

import "time"

// DateTimeLayout is the backend's local datetime layout for record
// timestamps and range parameters.
const DateTimeLayout = "2006-01-02T15:04:05"

// FormatDateTime renders t in the backend's datetime layout.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDateTime parses a backend timestamp in the caller's local zone,
// which determines day boundaries when bucketing.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, time.Local)
}

// DayOf truncates t to local midnight.
func DayOf(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// DayBounds returns the start and end of the local calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DayOf(t)
	return start, start.AddDate(0, 0, 1).Add(-time.Second)
}
