package recur

import "time"

// Next returns the first occurrence on or after ref, walking forward from
// start without materializing the full sequence. Equality is inclusive: when
// ref is itself an occurrence date, that same date is returned. Returns nil
// when a step passes endAt first, when the scan cap is exhausted, or when the
// rule makes no progress.
func Next(ref, start time.Time, r Rule, endAt *time.Time, loc *time.Location) *time.Time {
	current := StartOfDay(start, loc)
	pivot := StartOfDay(ref, loc)

	var end *time.Time
	if endAt != nil {
		e := StartOfDay(*endAt, loc)
		end = &e
	}

	for hops := 0; hops < MaxScanHops; hops++ {
		next, ok := Step(current, r, loc)
		if !ok {
			return nil
		}
		if end != nil && next.After(*end) {
			return nil
		}
		if !next.Before(pivot) {
			return &next
		}
		current = next
	}
	return nil
}

// Previous returns the last occurrence on or before ref, also inclusive at
// equality. It enumerates forward from start bounded by ref and endAt, so the
// answer is the final entry of that sequence. Returns nil when no occurrence
// falls on or before ref.
func Previous(ref, start time.Time, r Rule, endAt *time.Time, loc *time.Location) *time.Time {
	seq := RollForward(start, r, endAt, ref, loc, MaxScanHops)
	if len(seq) == 0 {
		return nil
	}
	last := seq[len(seq)-1]
	return &last
}
