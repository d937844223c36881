package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bindo/internal/core"
	"bindo/internal/recur"
)

// CalendarService aggregates pay days across all items into a date ordered
// feed for calendar rendering.
type CalendarService struct {
	store    ItemStore
	schedule *ScheduleService
	loc      *time.Location
}

func NewCalendarService(store ItemStore, schedule *ScheduleService, loc *time.Location) *CalendarService {
	return &CalendarService{
		store:    store,
		schedule: schedule,
		loc:      loc,
	}
}

// Events returns one event per distinct (date, title) pair in [from, to).
// A stored occurrence and a projection landing on the same day collapse into
// a single entry.
func (s *CalendarService) Events(ctx context.Context, from, to time.Time) ([]core.CalendarEvent, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	type eventKey struct {
		date  time.Time
		title string
	}
	seen := make(map[eventKey]bool)

	var events []core.CalendarEvent
	for i := range items {
		occs, err := s.schedule.Occurrences(ctx, &items[i], from, to)
		if err != nil {
			return nil, fmt.Errorf("occurrences for %q: %w", items[i].Name, err)
		}
		for _, occ := range occs {
			k := eventKey{
				date:  recur.StartOfDay(occ.EndDate, s.loc),
				title: items[i].Name,
			}
			if seen[k] {
				continue
			}
			seen[k] = true
			events = append(events, core.CalendarEvent{Date: k.date, Title: k.title})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Title < events[j].Title
	})
	return events, nil
}
