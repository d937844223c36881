package core

import "time"

// Granularity selects the bucket width for statistics aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityMonth
}

// StatsBucket is one aggregation row: total spend and payment count for the
// period starting at PeriodStart.
type StatsBucket struct {
	PeriodStart time.Time
	Total       Money
	Count       int
}
