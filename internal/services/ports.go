package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bindo/internal/core"
)

// ItemStore is the persistence surface the services build on. Both the
// SQLite repository and the in-memory store satisfy it.
type ItemStore interface {
	SaveItem(ctx context.Context, item *core.Item) error
	AppendOccurrence(ctx context.Context, occ core.Occurrence) error
	GetItem(ctx context.Context, id uuid.UUID) (*core.Item, error)
	ListItems(ctx context.Context) ([]core.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	NearestOccurrenceOnOrAfter(ctx context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error)
	NearestOccurrenceOnOrBefore(ctx context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error)
	LatestOccurrence(ctx context.Context, itemID uuid.UUID) (*core.Occurrence, error)
	OccurrencesInRange(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]core.Occurrence, error)
	Close() error
}
