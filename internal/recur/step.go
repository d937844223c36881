package recur

import "time"

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// addMonths adds n months to t, clamping the day of month instead of
// normalizing overflow: Jan 31 + 1 month is Feb 28 (or 29), not Mar 3.
// time.Time.AddDate normalizes, which is the wrong semantics here.
func addMonths(t time.Time, n int, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	anchor := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, loc)
	if last := daysIn(anchor.Year(), anchor.Month(), loc); d > last {
		d = last
	}
	return time.Date(anchor.Year(), anchor.Month(), d, 0, 0, 0, 0, loc)
}

// Step advances t by one interval of r and normalizes the result to the start
// of that day in loc. The second return value is false when the step made no
// forward progress (invalid rule, non-positive interval); callers must stop
// iterating when it is false.
func Step(t time.Time, r Rule, loc *time.Location) (time.Time, bool) {
	if !r.valid() {
		return time.Time{}, false
	}

	base := StartOfDay(t, loc)

	var next time.Time
	switch r.Unit {
	case UnitDays:
		next = base.AddDate(0, 0, r.Every)
	case UnitMonths:
		next = addMonths(base, r.Every, loc)
	default:
		return time.Time{}, false
	}

	next = StartOfDay(next, loc)
	if !next.After(base) {
		return time.Time{}, false
	}
	return next, true
}
