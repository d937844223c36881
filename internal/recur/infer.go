package recur

import (
	"sort"
	"time"
)

// Infer derives a recurrence rule from a set of historical occurrence dates.
// The dates are sorted ascending; the first two fix a hypothesis which must
// then hold exactly across every consecutive pair.
//
// A month hypothesis is tried before a day hypothesis when both are plausible:
// month-granularity billing is the common real-world pattern, so dates one
// calendar month apart infer Months(1), not Days(31).
//
// Returns ErrInsufficientData for fewer than two dates and
// ErrUnsupportedPattern when neither hypothesis validates.
func Infer(dates []time.Time, loc *time.Location) (Rule, error) {
	if len(dates) < 2 {
		return Rule{}, ErrInsufficientData
	}

	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = StartOfDay(d, loc)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, second := days[0], days[1]

	if m := monthsBetween(first, second, loc); m > 0 {
		rule := Rule{Every: m, Unit: UnitMonths}
		if holdsAcross(days, rule, loc) {
			return rule, nil
		}
	}

	if d := daysBetween(first, second); d > 0 {
		rule := Rule{Every: d, Unit: UnitDays}
		if holdsAcross(days, rule, loc) {
			return rule, nil
		}
	}

	return Rule{}, ErrUnsupportedPattern
}

// holdsAcross checks that stepping each date by rule lands exactly on the
// next one, for every consecutive pair.
func holdsAcross(days []time.Time, r Rule, loc *time.Location) bool {
	for i := 0; i < len(days)-1; i++ {
		next, ok := Step(days[i], r, loc)
		if !ok || !next.Equal(days[i+1]) {
			return false
		}
	}
	return true
}

// monthsBetween returns the number of whole calendar months from a to b,
// under the same clamped month addition the step function uses. Zero when b
// is less than one month after a.
func monthsBetween(a, b time.Time, loc *time.Location) int {
	m := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	for m > 0 && addMonths(a, m, loc).After(b) {
		m--
	}
	return m
}

// daysBetween returns the whole days from a to b; both are start-of-day
// values, rounding absorbs any DST offset in between.
func daysBetween(a, b time.Time) int {
	return int((b.Sub(a) + 12*time.Hour) / (24 * time.Hour))
}
