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

// ItemService orchestrates item writes across the store and the optional
// AMQP broker.
type ItemService struct {
	store      ItemStore
	amqpClient *amqp.Client
	loc        *time.Location
	now        func() time.Time
}

func NewItemService(store ItemStore, amqpClient *amqp.Client, loc *time.Location) *ItemService {
	return &ItemService{
		store:      store,
		amqpClient: amqpClient,
		loc:        loc,
		now:        time.Now,
	}
}

// CreateItem validates and persists a new item together with any initial
// occurrences.
func (s *ItemService) CreateItem(ctx context.Context, item core.Item) (*core.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := s.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	for i := range item.Occurrences {
		if item.Occurrences[i].ID == uuid.Nil {
			item.Occurrences[i].ID = uuid.New()
		}
		item.Occurrences[i].ItemID = item.ID
	}

	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	if err := s.store.SaveItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	return &item, nil
}

// UpdateItem replaces an existing item and its whole occurrence set.
func (s *ItemService) UpdateItem(ctx context.Context, item core.Item) (*core.Item, error) {
	existing, err := s.store.GetItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now().UTC()

	for i := range item.Occurrences {
		if item.Occurrences[i].ID == uuid.Nil {
			item.Occurrences[i].ID = uuid.New()
		}
		item.Occurrences[i].ItemID = item.ID
	}

	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	if err := s.store.SaveItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	return &item, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*core.Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context) ([]core.Item, error) {
	return s.store.ListItems(ctx)
}

// DeleteItem removes the item locally and publishes a delete message. A
// broker failure is logged, not surfaced, since the local delete succeeded.
func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if s.amqpClient == nil {
		return nil
	}
	if err := s.amqpClient.PublishItemDeleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish item deleted message",
			"item_id", id, "error", err)
	}

	return nil
}

// InferRule guesses a recurrence rule from observed pay days.
func (s *ItemService) InferRule(dates []time.Time) (recur.Rule, error) {
	return recur.Infer(dates, s.loc)
}

// Close closes both storage and AMQP connections.
func (s *ItemService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close item service: %v", errs)
	}

	return nil
}
