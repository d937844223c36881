package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bindo/internal/core"
	"bindo/internal/recur"
)

// StatsService aggregates spend over merged occurrences, bucketed by day or
// by month.
type StatsService struct {
	store    ItemStore
	schedule *ScheduleService
	loc      *time.Location
}

func NewStatsService(store ItemStore, schedule *ScheduleService, loc *time.Location) *StatsService {
	return &StatsService{
		store:    store,
		schedule: schedule,
		loc:      loc,
	}
}

// Buckets returns one row per period with at least one pay day in [from, to),
// sorted by period start ascending. Projected occurrences count with the
// item's base amount.
func (s *StatsService) Buckets(ctx context.Context, from, to time.Time, g core.Granularity) ([]core.StatsBucket, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("unknown granularity %q", g)
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	totals := make(map[time.Time]*core.StatsBucket)
	for i := range items {
		occs, err := s.schedule.Occurrences(ctx, &items[i], from, to)
		if err != nil {
			return nil, fmt.Errorf("occurrences for %q: %w", items[i].Name, err)
		}
		for _, occ := range occs {
			p := s.periodStart(occ.EndDate, g)
			b := totals[p]
			if b == nil {
				b = &core.StatsBucket{PeriodStart: p}
				totals[p] = b
			}
			b.Total.Cents += occ.Amount.Cents
			b.Count++
		}
	}

	buckets := make([]core.StatsBucket, 0, len(totals))
	for _, b := range totals {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].PeriodStart.Before(buckets[j].PeriodStart)
	})
	return buckets, nil
}

func (s *StatsService) periodStart(t time.Time, g core.Granularity) time.Time {
	t = recur.StartOfDay(t, s.loc)
	if g == core.GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, s.loc)
	}
	return t
}
