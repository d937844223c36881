// Package memory provides an in-memory item store. It backs the default
// zero-setup mode and the service tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bindo/internal/core"
	"bindo/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items map[uuid.UUID]core.Item
}

func New() *Store {
	return &Store{items: make(map[uuid.UUID]core.Item)}
}

func (s *Store) Close() error { return nil }

func (s *Store) SaveItem(_ context.Context, item *core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *Store) AppendOccurrence(_ context.Context, occ core.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[occ.ItemID]
	if !ok {
		return storage.ErrNotFound
	}
	item.Occurrences = append(item.Occurrences, occ)
	sortOccurrences(item.Occurrences)
	s.items[occ.ItemID] = item
	return nil
}

func (s *Store) GetItem(_ context.Context, id uuid.UUID) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := cloneItem(item)
	return &c, nil
}

func (s *Store) ListItems(_ context.Context) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]core.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, cloneItem(item))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (s *Store) DeleteItem(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) NearestOccurrenceOnOrAfter(_ context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *core.Occurrence
	for _, occ := range s.items[itemID].Occurrences {
		if occ.EndDate.Before(ref) {
			continue
		}
		if best == nil || occ.EndDate.Before(best.EndDate) {
			o := occ
			best = &o
		}
	}
	return best, nil
}

func (s *Store) NearestOccurrenceOnOrBefore(_ context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *core.Occurrence
	for _, occ := range s.items[itemID].Occurrences {
		if occ.EndDate.After(ref) {
			continue
		}
		if best == nil || occ.EndDate.After(best.EndDate) {
			o := occ
			best = &o
		}
	}
	return best, nil
}

func (s *Store) LatestOccurrence(_ context.Context, itemID uuid.UUID) (*core.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *core.Occurrence
	for _, occ := range s.items[itemID].Occurrences {
		if best == nil || occ.EndDate.After(best.EndDate) {
			o := occ
			best = &o
		}
	}
	return best, nil
}

func (s *Store) OccurrencesInRange(_ context.Context, itemID uuid.UUID, from, to time.Time) ([]core.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var occs []core.Occurrence
	for _, occ := range s.items[itemID].Occurrences {
		if occ.EndDate.Before(from) || !occ.EndDate.Before(to) {
			continue
		}
		occs = append(occs, occ)
	}
	sortOccurrences(occs)
	return occs, nil
}

func cloneItem(item core.Item) core.Item {
	c := item
	if item.EndAt != nil {
		end := *item.EndAt
		c.EndAt = &end
	}
	if item.Rule != nil {
		rule := *item.Rule
		c.Rule = &rule
	}
	c.Occurrences = append([]core.Occurrence(nil), item.Occurrences...)
	return c
}

func sortOccurrences(occs []core.Occurrence) {
	sort.Slice(occs, func(i, j int) bool { return occs[i].EndDate.Before(occs[j].EndDate) })
}
