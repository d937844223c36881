package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollForward_WeeklyWithEndDate(t *testing.T) {
	start := date(2025, 1, 1)
	end := date(2025, 1, 22)
	rule := Rule{Every: 7, Unit: UnitDays}

	got := RollForward(start, rule, &end, date(2025, 2, 1), time.UTC, MaxRangeHops)

	want := []time.Time{date(2025, 1, 8), date(2025, 1, 15), date(2025, 1, 22)}
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, got[i].Equal(want[i]), "entry %d: got %v, want %v", i, got[i], want[i])
	}
}

// The end date is an inclusive boundary when an occurrence lands exactly on
// it; anything past it is cut off.
func TestRollForward_EndDateBoundary(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 10, Unit: UnitDays}

	t.Run("occurrence exactly on end date is included", func(t *testing.T) {
		end := date(2025, 1, 21)
		got := RollForward(start, rule, &end, date(2025, 3, 1), time.UTC, MaxRangeHops)
		require.Len(t, got, 2)
		assert.True(t, got[1].Equal(end))
	})

	t.Run("occurrence past end date is excluded", func(t *testing.T) {
		end := date(2025, 1, 20)
		got := RollForward(start, rule, &end, date(2025, 3, 1), time.UTC, MaxRangeHops)
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(date(2025, 1, 11)))
	})
}

func TestRollForward_StrictlyIncreasing(t *testing.T) {
	start := date(2024, 1, 31)
	rule := Rule{Every: 1, Unit: UnitMonths}

	got := RollForward(start, rule, nil, date(2026, 1, 1), time.UTC, MaxRangeHops)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].After(got[i-1]), "sequence not increasing at %d: %v then %v", i, got[i-1], got[i])
	}
}

func TestRollForward_InvalidRangesAreEmpty(t *testing.T) {
	rule := Rule{Every: 1, Unit: UnitDays}

	t.Run("start after until", func(t *testing.T) {
		got := RollForward(date(2025, 5, 1), rule, nil, date(2025, 4, 1), time.UTC, MaxRangeHops)
		assert.Empty(t, got)
	})

	t.Run("start after end date", func(t *testing.T) {
		end := date(2025, 1, 1)
		got := RollForward(date(2025, 2, 1), rule, &end, date(2025, 6, 1), time.UTC, MaxRangeHops)
		assert.Empty(t, got)
	})
}

func TestRollForward_HopCapTruncates(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 1, Unit: UnitDays}

	got := RollForward(start, rule, nil, date(2030, 1, 1), time.UTC, 5)
	assert.Len(t, got, 5)
}

func TestBetween_HalfOpenWindow(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 7, Unit: UnitDays}

	t.Run("filters to window and keeps end date entries", func(t *testing.T) {
		end := date(2025, 1, 22)
		got := Between(date(2025, 1, 1), date(2025, 2, 1), start, rule, &end, time.UTC)
		require.Len(t, got, 3)
		assert.True(t, got[2].Equal(date(2025, 1, 22)))
	})

	t.Run("upper bound is exclusive", func(t *testing.T) {
		got := Between(date(2025, 1, 1), date(2025, 1, 15), start, rule, nil, time.UTC)
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(date(2025, 1, 8)))
	})

	t.Run("lower bound trims earlier occurrences", func(t *testing.T) {
		got := Between(date(2025, 1, 10), date(2025, 2, 1), start, rule, nil, time.UTC)
		require.Len(t, got, 3)
		assert.True(t, got[0].Equal(date(2025, 1, 15)))
	})
}
