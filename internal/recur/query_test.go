package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_DayOverflowClamp(t *testing.T) {
	// Start Jan 31, monthly: the first pay day clamps to the end of February.
	start := date(2025, 1, 31)
	rule := Rule{Every: 1, Unit: UnitMonths}

	got := Next(date(2025, 1, 31), start, rule, nil, time.UTC)
	require.NotNil(t, got)
	assert.True(t, got.Equal(date(2025, 2, 28)))
}

func TestNext_StartDateIsNotAnOccurrence(t *testing.T) {
	// Asking on the start date itself yields the first step, not the start.
	start := date(2025, 6, 1)
	rule := Rule{Every: 1, Unit: UnitMonths}

	got := Next(date(2025, 6, 1), start, rule, nil, time.UTC)
	require.NotNil(t, got)
	assert.True(t, got.Equal(date(2025, 7, 1)))
}

// Both queries are inclusive at equality: asked on an exact pay day, next and
// previous each return that same day.
func TestNextPrevious_InclusiveOnExactOccurrence(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 7, Unit: UnitDays}
	ref := date(2025, 1, 22) // third occurrence

	next := Next(ref, start, rule, nil, time.UTC)
	require.NotNil(t, next)
	assert.True(t, next.Equal(ref))

	prev := Previous(ref, start, rule, nil, time.UTC)
	require.NotNil(t, prev)
	assert.True(t, prev.Equal(ref))
}

func TestNext_RespectsEndDate(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 7, Unit: UnitDays}
	end := date(2025, 1, 22)

	t.Run("within range", func(t *testing.T) {
		got := Next(date(2025, 1, 20), start, rule, &end, time.UTC)
		require.NotNil(t, got)
		assert.True(t, got.Equal(date(2025, 1, 22)))
	})

	t.Run("past the end date", func(t *testing.T) {
		got := Next(date(2025, 1, 23), start, rule, &end, time.UTC)
		assert.Nil(t, got)
	})
}

func TestPrevious_BetweenOccurrences(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 7, Unit: UnitDays}

	got := Previous(date(2025, 1, 20), start, rule, nil, time.UTC)
	require.NotNil(t, got)
	assert.True(t, got.Equal(date(2025, 1, 15)))
}

func TestPrevious_NothingBeforeFirstOccurrence(t *testing.T) {
	start := date(2025, 1, 1)
	rule := Rule{Every: 7, Unit: UnitDays}

	got := Previous(date(2025, 1, 5), start, rule, nil, time.UTC)
	assert.Nil(t, got)
}

func TestNext_NilForMalformedRule(t *testing.T) {
	got := Next(date(2025, 1, 1), date(2025, 1, 1), Rule{Every: 0, Unit: UnitDays}, nil, time.UTC)
	assert.Nil(t, got)
}
