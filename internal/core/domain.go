package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bindo/internal/recur"
)

// Mode tells how an item's occurrences come to exist.
type Mode string

const (
	// ModeRule items compute occurrences from a recurrence rule; stored
	// occurrence rows are history, not the source of truth.
	ModeRule Mode = "rule"
	// ModeDate items have no rule; every occurrence is stored explicitly.
	ModeDate Mode = "date"
)

var (
	ErrEmptyName        = errors.New("empty item name")
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrIntervalReversed = errors.New("end date precedes start date")
	ErrIntervalEqual    = errors.New("end date equals start date")
	ErrOccurrenceOrder  = errors.New("occurrence start date must precede its pay day")
)

type (
	// Item is one tracked recurring payment.
	Item struct {
		ID           uuid.UUID
		Name         string
		BaseAmount   Money
		SharedAmount bool // occurrences bill the item's base amount
		StartDate    time.Time
		EndAt        *time.Time
		Rule         *recur.Rule // nil puts the item in date mode
		CreatedAt    time.Time
		UpdatedAt    time.Time
		Occurrences  []Occurrence
	}

	// Occurrence is one concrete payment period. EndDate is the pay day;
	// StartDate is where the period began.
	Occurrence struct {
		ID        uuid.UUID
		ItemID    uuid.UUID
		StartDate time.Time
		EndDate   time.Time
		Amount    Money
	}

	// CalendarEvent is a read projection for calendar rendering: a pay day
	// plus the item name. Never persisted on its own.
	CalendarEvent struct {
		Date  time.Time
		Title string
	}
)

// Mode returns ModeRule when a recurrence rule is present, ModeDate otherwise.
func (i Item) Mode() Mode {
	if i.Rule != nil {
		return ModeRule
	}
	return ModeDate
}

func (i Item) Validate() error {
	if len(strings.TrimSpace(i.Name)) == 0 {
		return ErrEmptyName
	}
	if len(i.Name) > 200 {
		return errors.New("item name too long (max 200 characters)")
	}
	if i.StartDate.IsZero() {
		return ErrInvalidStartDate
	}

	if i.EndAt != nil {
		if i.EndAt.Equal(i.StartDate) {
			return ErrIntervalEqual
		}
		if i.EndAt.Before(i.StartDate) {
			return ErrIntervalReversed
		}
	}

	if i.Rule != nil {
		if err := i.Rule.Validate(); err != nil {
			return err
		}
	}

	if i.SharedAmount {
		if err := i.BaseAmount.Validate(); err != nil {
			return err
		}
	}

	for _, occ := range i.Occurrences {
		if err := occ.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (o Occurrence) Validate() error {
	if o.StartDate.IsZero() || o.EndDate.IsZero() {
		return ErrInvalidStartDate
	}
	if !o.StartDate.Before(o.EndDate) {
		return ErrOccurrenceOrder
	}
	return o.Amount.Validate()
}
