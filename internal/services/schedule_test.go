package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"bindo/internal/core"
	"bindo/internal/recur"
	"bindo/internal/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedItem(t *testing.T, store *memory.Store, item core.Item) *core.Item {
	t.Helper()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Name == "" {
		item.Name = "Netflix"
	}
	if item.BaseAmount.Cents == 0 {
		item.BaseAmount = core.Money{Cents: 1299}
	}
	item.CreatedAt = date(2024, time.January, 1)
	item.UpdatedAt = item.CreatedAt
	for i := range item.Occurrences {
		item.Occurrences[i].ID = uuid.New()
		item.Occurrences[i].ItemID = item.ID
	}
	if err := store.SaveItem(context.Background(), &item); err != nil {
		t.Fatalf("save item: %v", err)
	}
	return &item
}

func TestScheduleService_RuleMode(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 15),
		Rule:      &recur.Rule{Every: 1, Unit: recur.UnitMonths},
	})

	next, err := svc.NextPayDay(ctx, item, date(2025, time.February, 1))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.February, 15)) {
		t.Errorf("NextPayDay = %v, want 2025-02-15", next)
	}

	// A query landing exactly on a pay day returns that day.
	next, err = svc.NextPayDay(ctx, item, date(2025, time.February, 15))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.February, 15)) {
		t.Errorf("NextPayDay on pay day = %v, want 2025-02-15", next)
	}

	last, err := svc.LastPayDay(ctx, item, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("LastPayDay: %v", err)
	}
	if last == nil || !last.Equal(date(2025, time.February, 15)) {
		t.Errorf("LastPayDay = %v, want 2025-02-15", last)
	}

	// Nothing has come due before the first step.
	last, err = svc.LastPayDay(ctx, item, date(2025, time.January, 20))
	if err != nil {
		t.Fatalf("LastPayDay: %v", err)
	}
	if last != nil {
		t.Errorf("LastPayDay before first pay day = %v, want nil", last)
	}
}

func TestScheduleService_RuleModeSeedsFromLatestOccurrence(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	// The stored occurrence moves the anchor: projections continue from
	// Feb 5, not from the item's start date.
	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 1),
		Rule:      &recur.Rule{Every: 1, Unit: recur.UnitMonths},
		Occurrences: []core.Occurrence{
			{
				StartDate: date(2025, time.February, 5),
				EndDate:   date(2025, time.March, 5),
				Amount:    core.Money{Cents: 1299},
			},
		},
	})

	next, err := svc.NextPayDay(ctx, item, date(2025, time.March, 1))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.March, 5)) {
		t.Errorf("NextPayDay = %v, want 2025-03-05", next)
	}

	next, err = svc.NextPayDay(ctx, item, date(2025, time.March, 6))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.April, 5)) {
		t.Errorf("NextPayDay past stored pay day = %v, want 2025-04-05", next)
	}
}

func TestScheduleService_DateMode(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 10),
		Occurrences: []core.Occurrence{
			{
				StartDate: date(2025, time.January, 10),
				EndDate:   date(2025, time.February, 10),
				Amount:    core.Money{Cents: 500},
			},
		},
	})

	next, err := svc.NextPayDay(ctx, item, date(2025, time.February, 10))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.February, 10)) {
		t.Errorf("NextPayDay on pay day = %v, want 2025-02-10", next)
	}

	next, err = svc.NextPayDay(ctx, item, date(2025, time.February, 11))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next != nil {
		t.Errorf("NextPayDay past last occurrence = %v, want nil", next)
	}

	last, err := svc.LastPayDay(ctx, item, date(2025, time.February, 10))
	if err != nil {
		t.Fatalf("LastPayDay: %v", err)
	}
	if last == nil || !last.Equal(date(2025, time.February, 10)) {
		t.Errorf("LastPayDay on pay day = %v, want 2025-02-10", last)
	}

	last, err = svc.LastPayDay(ctx, item, date(2025, time.January, 1))
	if err != nil {
		t.Fatalf("LastPayDay: %v", err)
	}
	if last != nil {
		t.Errorf("LastPayDay before any occurrence = %v, want nil", last)
	}
}

func TestScheduleService_RuleModeWithEndDate(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	endAt := date(2025, time.March, 15)
	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 15),
		EndAt:     &endAt,
		Rule:      &recur.Rule{Every: 1, Unit: recur.UnitMonths},
	})

	// March 15 equals the end date and still counts.
	next, err := svc.NextPayDay(ctx, item, date(2025, time.March, 1))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next == nil || !next.Equal(date(2025, time.March, 15)) {
		t.Errorf("NextPayDay = %v, want 2025-03-15", next)
	}

	next, err = svc.NextPayDay(ctx, item, date(2025, time.March, 16))
	if err != nil {
		t.Fatalf("NextPayDay: %v", err)
	}
	if next != nil {
		t.Errorf("NextPayDay past end date = %v, want nil", next)
	}
}

func TestScheduleService_OccurrencesMergesStoredAndProjected(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 1),
		Rule:      &recur.Rule{Every: 1, Unit: recur.UnitMonths},
		Occurrences: []core.Occurrence{
			{
				StartDate: date(2025, time.January, 1),
				EndDate:   date(2025, time.February, 1),
				Amount:    core.Money{Cents: 999},
			},
		},
	})

	occs, err := svc.Occurrences(ctx, item, date(2025, time.January, 1), date(2025, time.April, 1))
	if err != nil {
		t.Fatalf("Occurrences: %v", err)
	}

	// Feb 1 is stored, Mar 1 is projected. Apr 1 sits on the exclusive
	// upper bound and stays out.
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2: %+v", len(occs), occs)
	}
	if !occs[0].EndDate.Equal(date(2025, time.February, 1)) {
		t.Errorf("occs[0].EndDate = %v, want 2025-02-01", occs[0].EndDate)
	}
	if occs[0].Amount.Cents != 999 {
		t.Errorf("stored occurrence amount = %d, want 999", occs[0].Amount.Cents)
	}
	if !occs[1].EndDate.Equal(date(2025, time.March, 1)) {
		t.Errorf("occs[1].EndDate = %v, want 2025-03-01", occs[1].EndDate)
	}
	if !occs[1].StartDate.Equal(date(2025, time.February, 1)) {
		t.Errorf("projected occurrence StartDate = %v, want 2025-02-01", occs[1].StartDate)
	}
	if occs[1].Amount.Cents != item.BaseAmount.Cents {
		t.Errorf("projected occurrence amount = %d, want base amount %d",
			occs[1].Amount.Cents, item.BaseAmount.Cents)
	}
}

func TestScheduleService_OccurrencesDateModeIgnoresProjection(t *testing.T) {
	store := memory.New()
	svc := NewScheduleService(store, time.UTC)
	ctx := context.Background()

	item := seedItem(t, store, core.Item{
		StartDate: date(2025, time.January, 1),
		Occurrences: []core.Occurrence{
			{
				StartDate: date(2025, time.January, 1),
				EndDate:   date(2025, time.February, 1),
				Amount:    core.Money{Cents: 999},
			},
		},
	})

	occs, err := svc.Occurrences(ctx, item, date(2025, time.January, 1), date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("Occurrences: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}
}
