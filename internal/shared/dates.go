package shared

import "time"

// DayBounds is the half-open [Start, End) interval of a calendar day in the
// server's local timezone. Day matching is always done with a range query
// against these bounds, never by picking the most recent row.
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// Today returns the bounds of the calendar day containing now.
func Today(now time.Time) DayBounds {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DayBounds{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the day.
func (d DayBounds) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// SameDay reports whether a and b share year, month and day in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
