package shared

import "time"

// TruncateToDay returns midnight UTC of t's calendar date
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days of month in year
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateInMonth returns day of the given month, clamped to the month's last day.
// Month overflow is normalized, so month 13 is January of the next year.
func DateInMonth(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = first.Year(), first.Month()
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped moves t forward by months while keeping anchorDay,
// clamped to the target month's length. Jan 31 + 1 month is Feb 28 (or 29).
func AddMonthsClamped(t time.Time, months, anchorDay int) time.Time {
	return DateInMonth(t.Year(), t.Month()+time.Month(months), anchorDay)
}
