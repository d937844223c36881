package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"bindo/internal/core"
	"bindo/internal/recur"
	"bindo/internal/storage"
	"bindo/internal/storage/memory"
)

func TestItemService_CreateItem(t *testing.T) {
	store := memory.New()
	svc := NewItemService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, core.Item{
		Name:       "Spotify",
		BaseAmount: core.Money{Cents: 1099},
		StartDate:  date(2025, time.January, 1),
		Rule:       &recur.Rule{Every: 1, Unit: recur.UnitMonths},
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("CreateItem should assign an ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("CreateItem should set timestamps")
	}

	got, err := svc.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Spotify" {
		t.Errorf("Name = %q, want Spotify", got.Name)
	}
}

func TestItemService_CreateItemRejectsInvalid(t *testing.T) {
	store := memory.New()
	svc := NewItemService(store, nil, time.UTC)

	_, err := svc.CreateItem(context.Background(), core.Item{
		BaseAmount: core.Money{Cents: 1099},
		StartDate:  date(2025, time.January, 1),
	})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("CreateItem error = %v, want ErrEmptyName", err)
	}
}

func TestItemService_UpdateItemReplacesOccurrences(t *testing.T) {
	store := memory.New()
	svc := NewItemService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, core.Item{
		Name:       "Gym",
		BaseAmount: core.Money{Cents: 4500},
		StartDate:  date(2025, time.January, 1),
		Occurrences: []core.Occurrence{
			{
				StartDate: date(2025, time.January, 1),
				EndDate:   date(2025, time.February, 1),
				Amount:    core.Money{Cents: 4500},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	updated := *created
	updated.Occurrences = []core.Occurrence{
		{
			StartDate: date(2025, time.March, 1),
			EndDate:   date(2025, time.April, 1),
			Amount:    core.Money{Cents: 5000},
		},
	}
	after, err := svc.UpdateItem(ctx, updated)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !after.CreatedAt.Equal(created.CreatedAt) {
		t.Error("UpdateItem should preserve CreatedAt")
	}

	got, err := svc.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1 after full replace", len(got.Occurrences))
	}
	if !got.Occurrences[0].EndDate.Equal(date(2025, time.April, 1)) {
		t.Errorf("occurrence EndDate = %v, want 2025-04-01", got.Occurrences[0].EndDate)
	}
}

func TestItemService_DeleteItem(t *testing.T) {
	store := memory.New()
	svc := NewItemService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, core.Item{
		Name:       "Gym",
		BaseAmount: core.Money{Cents: 4500},
		StartDate:  date(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := svc.DeleteItem(ctx, created.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := svc.GetItem(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetItem after delete = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteItem(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteItem = %v, want ErrNotFound", err)
	}
}

func TestItemService_InferRule(t *testing.T) {
	svc := NewItemService(memory.New(), nil, time.UTC)

	rule, err := svc.InferRule([]time.Time{
		date(2025, time.January, 8),
		date(2025, time.January, 15),
		date(2025, time.January, 22),
	})
	if err != nil {
		t.Fatalf("InferRule: %v", err)
	}
	want := recur.Rule{Every: 7, Unit: recur.UnitDays}
	if rule != want {
		t.Errorf("InferRule = %+v, want %+v", rule, want)
	}

	if _, err := svc.InferRule([]time.Time{date(2025, time.January, 8)}); !errors.Is(err, recur.ErrInsufficientData) {
		t.Errorf("InferRule with one date = %v, want ErrInsufficientData", err)
	}
}

func TestItemService_Close(t *testing.T) {
	svc := NewItemService(memory.New(), nil, time.UTC)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
