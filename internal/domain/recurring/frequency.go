package recurring

import (
	"time"

	"github.com/botforce/unity/internal/domain/shared"
)

// Frequency is the interval between two generated documents
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// IsValid checks if the frequency is supported
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// IsWeekBased reports whether the schedule is anchored on a weekday
func (f Frequency) IsWeekBased() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// Schedule anchors a frequency on a day of month or a weekday
type Schedule struct {
	Frequency  Frequency
	DayOfMonth *int          // 1-31, month-based frequencies
	DayOfWeek  *time.Weekday // week-based frequencies
}

// Validate checks that the anchor matches the frequency
func (s Schedule) Validate() error {
	if !s.Frequency.IsValid() {
		return shared.NewDomainErrorf("INVALID_FREQUENCY", "Unsupported frequency: %s", s.Frequency)
	}
	if s.DayOfMonth != nil && (*s.DayOfMonth < 1 || *s.DayOfMonth > 31) {
		return shared.NewDomainError("INVALID_DAY_OF_MONTH", "Day of month must be between 1 and 31")
	}
	if s.DayOfWeek != nil && (*s.DayOfWeek < time.Sunday || *s.DayOfWeek > time.Saturday) {
		return shared.NewDomainError("INVALID_DAY_OF_WEEK", "Day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if s.Frequency.IsWeekBased() && s.DayOfMonth != nil {
		return shared.NewDomainError("INVALID_SCHEDULE", "Weekly schedules use a day of week, not a day of month")
	}
	if !s.Frequency.IsWeekBased() && s.DayOfWeek != nil {
		return shared.NewDomainError("INVALID_SCHEDULE", "Monthly, quarterly and yearly schedules use a day of month")
	}
	return nil
}

// FirstOccurrence returns the first scheduled date on or after start
func (s Schedule) FirstOccurrence(start time.Time) time.Time {
	start = shared.TruncateToDay(start)
	switch {
	case s.Frequency.IsWeekBased() && s.DayOfWeek != nil:
		offset := (int(*s.DayOfWeek) - int(start.Weekday()) + 7) % 7
		return start.AddDate(0, 0, offset)
	case !s.Frequency.IsWeekBased() && s.DayOfMonth != nil:
		candidate := shared.DateInMonth(start.Year(), start.Month(), *s.DayOfMonth)
		if candidate.Before(start) {
			candidate = shared.AddMonthsClamped(start, 1, *s.DayOfMonth)
		}
		return candidate
	}
	return start
}

// Next returns the issue date one period after current. Month-based
// frequencies keep the anchor day and clamp it to short months, so a
// template anchored on the 31st issues on Feb 28 (29) and Mar 31.
func (s Schedule) Next(current time.Time) time.Time {
	current = shared.TruncateToDay(current)
	anchor := current.Day()
	if s.DayOfMonth != nil {
		anchor = *s.DayOfMonth
	}

	switch s.Frequency {
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	case FrequencyQuarterly:
		return shared.AddMonthsClamped(current, 3, anchor)
	case FrequencyYearly:
		return shared.AddMonthsClamped(current, 12, anchor)
	default:
		return shared.AddMonthsClamped(current, 1, anchor)
	}
}
