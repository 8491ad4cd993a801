package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock returns the current instant. Components take one so tests can pin "today".
type Clock func() time.Time

// Today returns the calendar date of now in the user's timezone.
// A nil location means time.Local.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}

// DaysBetween returns to - from in whole calendar days.
func DaysBetween(from, to civil.Date) int {
	return to.DaysSince(from)
}

// IsToday reports whether d is the same calendar date as today.
func IsToday(d, today civil.Date) bool {
	return DaysBetween(d, today) == 0
}

// IsYesterday reports whether d is exactly one calendar day before today.
func IsYesterday(d, today civil.Date) bool {
	return DaysBetween(d, today) == 1
}

// ParseDate parses a "YYYY-MM-DD" marker. Returns false for anything else.
func ParseDate(s string) (civil.Date, bool) {
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}
