package recur

import "time"

// RollForward enumerates occurrence pay days by repeatedly stepping from
// start. The start date itself is not an occurrence; the first entry is one
// interval after it. Enumeration stops when a stepped date would pass endAt
// (a date exactly equal to endAt is included), when it passes until, when the
// hop cap is reached, or when the rule stops making progress.
//
// Violated preconditions (start after until, or start after endAt) yield an
// empty result: an empty range is a legitimate answer, not an error.
func RollForward(start time.Time, r Rule, endAt *time.Time, until time.Time, loc *time.Location, maxHops int) []time.Time {
	current := StartOfDay(start, loc)
	limit := StartOfDay(until, loc)

	var end *time.Time
	if endAt != nil {
		e := StartOfDay(*endAt, loc)
		end = &e
		if current.After(e) {
			return nil
		}
	}
	if current.After(limit) {
		return nil
	}

	var out []time.Time
	for hops := 0; hops < maxHops; hops++ {
		next, ok := Step(current, r, loc)
		if !ok {
			break
		}
		if end != nil && next.After(*end) {
			break
		}
		if next.After(limit) {
			break
		}
		out = append(out, next)
		current = next
	}
	return out
}

// Between returns the occurrence pay days falling inside the half-open window
// [lo, hi). Enumeration is bounded by min(hi, endAt); hi itself is excluded
// even when it lands exactly on an occurrence.
func Between(lo, hi time.Time, start time.Time, r Rule, endAt *time.Time, loc *time.Location) []time.Time {
	low := StartOfDay(lo, loc)
	high := StartOfDay(hi, loc)

	all := RollForward(start, r, endAt, high, loc, MaxRangeHops)
	var out []time.Time
	for _, d := range all {
		if d.Before(low) || !d.Before(high) {
			continue
		}
		out = append(out, d)
	}
	return out
}
