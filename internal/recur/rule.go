// Package recur implements the recurring-occurrence calculator: stepping a
// date forward by a fixed day or month interval, enumerating occurrences in a
// window, answering next/previous queries, and inferring an interval from
// historical dates.
//
// All functions are pure: they take the calendar location explicitly, never
// touch storage, and treat "no occurrence found" as a nil/empty result rather
// than an error. Iteration is hard-capped so malformed rules can never hang a
// caller.
package recur

import (
	"errors"
	"fmt"
)

// Unit is the granularity of a recurrence interval.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitMonths Unit = "months"
)

// Rule describes a fixed recurrence interval: every N days or every N months.
// A rule is valid only when Every is positive and Unit is a known granularity;
// the engine re-checks this on every call so an invalid rule degrades to
// "no occurrences" instead of looping.
type Rule struct {
	Every int
	Unit  Unit
}

var (
	ErrInsufficientData   = errors.New("recur: need at least two dates to infer an interval")
	ErrUnsupportedPattern = errors.New("recur: no consistent day or month interval fits the dates")
)

// Validate reports whether the rule describes a usable interval.
func (r Rule) Validate() error {
	if r.Every <= 0 {
		return fmt.Errorf("recur: interval must be positive, got %d", r.Every)
	}
	switch r.Unit {
	case UnitDays, UnitMonths:
		return nil
	default:
		return fmt.Errorf("recur: unknown interval unit %q", r.Unit)
	}
}

func (r Rule) valid() bool {
	return r.Validate() == nil
}

func (r Rule) String() string {
	unit := string(r.Unit)
	if r.Every == 1 {
		unit = unit[:len(unit)-1] // "days" -> "day"
	}
	return fmt.Sprintf("every %d %s", r.Every, unit)
}

// Iteration caps. Range enumeration walks at most MaxRangeHops steps; single
// answer queries (next/previous) may walk further before giving up. Hitting a
// cap truncates the result silently, it is not an error.
const (
	MaxRangeHops = 10_000
	MaxScanHops  = 100_000
)
