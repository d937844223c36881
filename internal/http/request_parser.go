// Package http provides the JSON API server.
//
// This file implements utilities for parsing and validating request data:
// query parameters, date ranges, and the item wire format.
package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"bindo/internal/core"
	"bindo/internal/recur"
)

// rulePayload is the wire form of a recurrence rule.
type rulePayload struct {
	Every int    `json:"every"`
	Unit  string `json:"unit"`
}

// occurrencePayload is the wire form of one billing period.
type occurrencePayload struct {
	ID        string `json:"id,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Amount    string `json:"amount"`
}

// itemPayload is the wire form of an item. Dates travel as YYYY-MM-DD,
// amounts as decimal strings.
type itemPayload struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name"`
	Amount       string              `json:"amount"`
	SharedAmount bool                `json:"shared_amount"`
	StartDate    string              `json:"start_date"`
	EndAt        string              `json:"end_at,omitempty"`
	Rule         *rulePayload        `json:"rule,omitempty"`
	CreatedAt    string              `json:"created_at,omitempty"`
	UpdatedAt    string              `json:"updated_at,omitempty"`
	Occurrences  []occurrencePayload `json:"occurrences,omitempty"`
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// parseRange reads from/to query parameters. Missing bounds default to
// today and today plus the horizon. The range is half-open: [from, to).
func parseRange(query url.Values, loc *time.Location, horizon time.Duration) (time.Time, time.Time, error) {
	now := recur.StartOfDay(time.Now(), loc)
	from := now
	to := recur.StartOfDay(now.Add(horizon), loc)

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := parseDate(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := parseDate(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = d
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: from %s is not before to %s",
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return from, to, nil
}

func parseItemID(query url.Values) (uuid.UUID, error) {
	raw := strings.TrimSpace(query.Get("id"))
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id parameter")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// itemFromPayload converts the wire form into a domain item. The caller
// still runs Validate on the result.
func itemFromPayload(p itemPayload, loc *time.Location) (core.Item, error) {
	var item core.Item

	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return item, fmt.Errorf("invalid item id %q", p.ID)
		}
		item.ID = id
	}

	item.Name = strings.TrimSpace(p.Name)
	item.SharedAmount = p.SharedAmount

	if p.Amount != "" {
		cents, err := core.ParseDecimalToCents(p.Amount)
		if err != nil {
			return item, fmt.Errorf("invalid amount %q: %w", p.Amount, err)
		}
		item.BaseAmount = core.Money{Cents: cents}
	}

	if p.StartDate != "" {
		d, err := parseDate(p.StartDate, loc)
		if err != nil {
			return item, err
		}
		item.StartDate = d
	}
	if p.EndAt != "" {
		d, err := parseDate(p.EndAt, loc)
		if err != nil {
			return item, err
		}
		item.EndAt = &d
	}

	if p.Rule != nil {
		item.Rule = &recur.Rule{
			Every: p.Rule.Every,
			Unit:  recur.Unit(p.Rule.Unit),
		}
	}

	for _, op := range p.Occurrences {
		occ, err := occurrenceFromPayload(op, loc)
		if err != nil {
			return item, err
		}
		item.Occurrences = append(item.Occurrences, occ)
	}

	return item, nil
}

func occurrenceFromPayload(p occurrencePayload, loc *time.Location) (core.Occurrence, error) {
	var occ core.Occurrence

	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return occ, fmt.Errorf("invalid occurrence id %q", p.ID)
		}
		occ.ID = id
	}

	start, err := parseDate(p.StartDate, loc)
	if err != nil {
		return occ, err
	}
	end, err := parseDate(p.EndDate, loc)
	if err != nil {
		return occ, err
	}
	occ.StartDate = start
	occ.EndDate = end

	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return occ, fmt.Errorf("invalid occurrence amount %q: %w", p.Amount, err)
	}
	occ.Amount = core.Money{Cents: cents}

	return occ, nil
}

func payloadFromItem(item core.Item) itemPayload {
	p := itemPayload{
		ID:           item.ID.String(),
		Name:         item.Name,
		Amount:       item.BaseAmount.String(),
		SharedAmount: item.SharedAmount,
		StartDate:    item.StartDate.Format(time.DateOnly),
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
	}
	if item.EndAt != nil {
		p.EndAt = item.EndAt.Format(time.DateOnly)
	}
	if item.Rule != nil {
		p.Rule = &rulePayload{
			Every: item.Rule.Every,
			Unit:  string(item.Rule.Unit),
		}
	}
	for _, occ := range item.Occurrences {
		p.Occurrences = append(p.Occurrences, payloadFromOccurrence(occ))
	}
	return p
}

// payloadFromOccurrence leaves the ID empty for projected occurrences,
// which only exist in the response.
func payloadFromOccurrence(occ core.Occurrence) occurrencePayload {
	var id string
	if occ.ID != uuid.Nil {
		id = occ.ID.String()
	}
	return occurrencePayload{
		ID:        id,
		StartDate: occ.StartDate.Format(time.DateOnly),
		EndDate:   occ.EndDate.Format(time.DateOnly),
		Amount:    occ.Amount.String(),
	}
}
