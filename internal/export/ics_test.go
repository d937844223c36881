package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"bindo/internal/core"
)

func TestWriteICS(t *testing.T) {
	events := []core.CalendarEvent{
		{Date: date(2025, time.February, 1), Title: "Netflix"},
		{Date: date(2025, time.February, 3), Title: "Rent"},
	}
	now := date(2025, time.January, 20)

	var buf bytes.Buffer
	if err := WriteICS(&buf, events, now); err != nil {
		t.Fatalf("WriteICS: %v", err)
	}

	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	prodID, err := cal.Props.Text(ical.PropProductID)
	if err != nil || prodID != icsProductID {
		t.Errorf("product id = %q (%v), want %q", prodID, err, icsProductID)
	}

	var summaries []string
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		summary, err := child.Props.Text(ical.PropSummary)
		if err != nil {
			t.Fatalf("event summary: %v", err)
		}
		summaries = append(summaries, summary)

		start, err := child.Props.DateTime(ical.PropDateTimeStart, time.UTC)
		if err != nil {
			t.Fatalf("event start: %v", err)
		}
		if start.Year() != 2025 || start.Month() != time.February {
			t.Errorf("event start = %v, want February 2025", start)
		}
	}
	if strings.Join(summaries, ",") != "Netflix,Rent" {
		t.Errorf("summaries = %v, want [Netflix Rent]", summaries)
	}
}

func TestWriteICS_StableUIDs(t *testing.T) {
	ev := core.CalendarEvent{Date: date(2025, time.February, 1), Title: "Netflix"}

	if eventUID(ev) != eventUID(ev) {
		t.Error("eventUID should be deterministic for the same event")
	}
	other := core.CalendarEvent{Date: date(2025, time.February, 1), Title: "Rent"}
	if eventUID(ev) == eventUID(other) {
		t.Error("different titles should produce different UIDs")
	}
}
