package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bindo/internal/core"
	"bindo/internal/recur"
)

// ScheduleService answers pay day questions for a single item. Items with a
// rule are projected through the recurrence engine, items without one are
// answered from their stored occurrences only.
type ScheduleService struct {
	store ItemStore
	loc   *time.Location
	now   func() time.Time
}

func NewScheduleService(store ItemStore, loc *time.Location) *ScheduleService {
	return &ScheduleService{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// NextPayDay returns the first pay day on or after today, or nil when the
// item has none ahead.
func (s *ScheduleService) NextPayDay(ctx context.Context, item *core.Item, today time.Time) (*time.Time, error) {
	today = recur.StartOfDay(today, s.loc)

	if item.Mode() == core.ModeDate {
		occ, err := s.store.NearestOccurrenceOnOrAfter(ctx, item.ID, today)
		if err != nil {
			return nil, fmt.Errorf("nearest occurrence on or after: %w", err)
		}
		if occ == nil {
			return nil, nil
		}
		d := recur.StartOfDay(occ.EndDate, s.loc)
		return &d, nil
	}

	seed, err := s.seedStart(ctx, item)
	if err != nil {
		return nil, err
	}
	return recur.Next(today, seed, *item.Rule, item.EndAt, s.loc), nil
}

// LastPayDay returns the most recent pay day on or before today, or nil when
// nothing has come due yet.
func (s *ScheduleService) LastPayDay(ctx context.Context, item *core.Item, today time.Time) (*time.Time, error) {
	today = recur.StartOfDay(today, s.loc)

	if item.Mode() == core.ModeDate {
		occ, err := s.store.NearestOccurrenceOnOrBefore(ctx, item.ID, today)
		if err != nil {
			return nil, fmt.Errorf("nearest occurrence on or before: %w", err)
		}
		if occ == nil {
			return nil, nil
		}
		d := recur.StartOfDay(occ.EndDate, s.loc)
		return &d, nil
	}

	seed, err := s.seedStart(ctx, item)
	if err != nil {
		return nil, err
	}
	return recur.Previous(today, seed, *item.Rule, item.EndAt, s.loc), nil
}

// Occurrences returns the stored occurrences with a pay day in [from, to)
// merged with rule projections that have not been materialized yet. Projected
// entries carry the item's base amount and a zero ID.
func (s *ScheduleService) Occurrences(ctx context.Context, item *core.Item, from, to time.Time) ([]core.Occurrence, error) {
	from = recur.StartOfDay(from, s.loc)
	to = recur.StartOfDay(to, s.loc)

	stored, err := s.store.OccurrencesInRange(ctx, item.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("occurrences in range: %w", err)
	}

	if item.Mode() == core.ModeDate {
		return stored, nil
	}

	seen := make(map[time.Time]bool, len(stored))
	for _, occ := range stored {
		seen[recur.StartOfDay(occ.EndDate, s.loc)] = true
	}

	seed, err := s.seedStart(ctx, item)
	if err != nil {
		return nil, err
	}

	merged := stored
	prev := seed
	for _, d := range recur.RollForward(seed, *item.Rule, item.EndAt, to, s.loc, recur.MaxRangeHops) {
		if !d.Before(from) && d.Before(to) && !seen[d] {
			merged = append(merged, core.Occurrence{
				ItemID:    item.ID,
				StartDate: prev,
				EndDate:   d,
				Amount:    item.BaseAmount,
			})
		}
		prev = d
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].EndDate.Before(merged[j].EndDate)
	})
	return merged, nil
}

// seedStart anchors rule projection on the most recent stored occurrence so
// the rule lattice stays aligned with what was already materialized. Without
// stored occurrences the item's own start date is the anchor, falling back
// to its creation time and finally to now.
func (s *ScheduleService) seedStart(ctx context.Context, item *core.Item) (time.Time, error) {
	latest, err := s.store.LatestOccurrence(ctx, item.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest occurrence: %w", err)
	}

	switch {
	case latest != nil:
		return recur.StartOfDay(latest.StartDate, s.loc), nil
	case !item.StartDate.IsZero():
		return recur.StartOfDay(item.StartDate, s.loc), nil
	case !item.CreatedAt.IsZero():
		return recur.StartOfDay(item.CreatedAt, s.loc), nil
	default:
		return recur.StartOfDay(s.now(), s.loc), nil
	}
}
