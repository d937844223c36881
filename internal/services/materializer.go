package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bindo/internal/amqp"
	"bindo/internal/core"
	"bindo/internal/recur"
)

// Materializer turns due rule projections into stored occurrences. The
// worker binary runs it on an interval.
type Materializer struct {
	store      ItemStore
	schedule   *ScheduleService
	amqpClient *amqp.Client
	loc        *time.Location
}

func NewMaterializer(store ItemStore, schedule *ScheduleService, amqpClient *amqp.Client, loc *time.Location) *Materializer {
	return &Materializer{
		store:      store,
		schedule:   schedule,
		amqpClient: amqpClient,
		loc:        loc,
	}
}

// ProcessDueItems materializes every pay day up to and including today for
// all rule items and returns how many occurrences it created. One item
// failing does not stop the rest.
func (m *Materializer) ProcessDueItems(ctx context.Context, now time.Time) (int, error) {
	if m.store == nil || m.schedule == nil {
		return 0, fmt.Errorf("materializer not properly initialized")
	}

	today := recur.StartOfDay(now, m.loc)

	items, err := m.store.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	slog.InfoContext(ctx, "Materializing due occurrences",
		"total_items", len(items),
		"processing_date", today.Format("2006-01-02"))

	created := 0
	for i := range items {
		item := &items[i]
		if item.Mode() != core.ModeRule {
			continue
		}

		n, err := m.processItem(ctx, item, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize item",
				"item_id", item.ID,
				"name", item.Name,
				"error", err)
			continue
		}
		created += n
	}

	slog.InfoContext(ctx, "Materialization complete",
		"created", created,
		"total_checked", len(items))

	return created, nil
}

func (m *Materializer) processItem(ctx context.Context, item *core.Item, today time.Time) (int, error) {
	seed, err := m.schedule.seedStart(ctx, item)
	if err != nil {
		return 0, err
	}

	due := recur.RollForward(seed, *item.Rule, item.EndAt, today, m.loc, recur.MaxRangeHops)
	if len(due) == 0 {
		return 0, nil
	}

	latest, err := m.store.LatestOccurrence(ctx, item.ID)
	if err != nil {
		return 0, fmt.Errorf("latest occurrence: %w", err)
	}

	created := 0
	prev := seed
	for _, d := range due {
		// Already materialized up to the latest stored pay day.
		if latest != nil && !d.After(recur.StartOfDay(latest.EndDate, m.loc)) {
			prev = d
			continue
		}

		occ := core.Occurrence{
			ID:        uuid.New(),
			ItemID:    item.ID,
			StartDate: prev,
			EndDate:   d,
			Amount:    item.BaseAmount,
		}
		if err := m.store.AppendOccurrence(ctx, occ); err != nil {
			return created, fmt.Errorf("append occurrence: %w", err)
		}
		created++

		slog.InfoContext(ctx, "Materialized occurrence",
			"item_id", item.ID,
			"name", item.Name,
			"pay_day", d.Format("2006-01-02"),
			"amount_cents", occ.Amount.Cents)

		if m.amqpClient != nil {
			if err := m.amqpClient.PublishOccurrenceDue(ctx, item.ID, occ.ID, d); err != nil {
				slog.ErrorContext(ctx, "Failed to publish occurrence due message",
					"item_id", item.ID,
					"occurrence_id", occ.ID,
					"error", err)
				// The occurrence is stored, the message is best effort.
			}
		}

		prev = d
	}

	return created, nil
}
