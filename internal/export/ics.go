package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"bindo/internal/core"
)

const icsProductID = "-//bindo//payment calendar//EN"

// WriteICS writes the calendar events as a VCALENDAR document with one
// VEVENT per pay day. Event UIDs are derived from (date, title) so repeated
// exports stay stable for calendar clients.
func WriteICS(w io.Writer, events []core.CalendarEvent, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, icsProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, ev := range events {
		comp := ical.NewComponent(ical.CompEvent)
		comp.Props.SetText(ical.PropUID, eventUID(ev))
		comp.Props.SetText(ical.PropSummary, ev.Title)
		comp.Props.SetDateTime(ical.PropDateTimeStart, ev.Date.UTC())
		comp.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		cal.Children = append(cal.Children, comp)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func eventUID(ev core.CalendarEvent) string {
	seed := fmt.Sprintf("%s/%s", ev.Date.UTC().Format(time.DateOnly), ev.Title)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String() + "@bindo"
}
