// Package cadence decides when a recurring reminder is due. Daily reminders
// are due every day; weekly reminders are due on their configured weekday
// (0 = Sunday through 6 = Saturday, matching time.Weekday). Reminders also
// carry a day_of_month column, but no monthly matching rule exists yet: the
// column is stored and returned untouched.
package cadence

import (
	"time"

	"github.com/stgabriel/parishhub/internal/model"
)

// DateLayout is the calendar-date form used for task due dates.
const DateLayout = "2006-01-02"

// DateString formats t as a calendar date in its own location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// DayOfWeek returns the local day-of-week of t as 0 (Sunday) through 6.
func DayOfWeek(t time.Time) int {
	return int(t.Weekday())
}

// Matches reports whether the reminder is due on the given day. Inactive
// reminders never match.
func Matches(r model.RecurringReminder, day time.Time) bool {
	if !r.IsActive {
		return false
	}
	switch r.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return r.DayOfWeek != nil && *r.DayOfWeek == DayOfWeek(day)
	}
	return false
}
