package http

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"bindo/internal/core"
	"bindo/internal/export"
)

type calendarEventPayload struct {
	Date  string `json:"date"`
	Title string `json:"title"`
}

// handleCalendar returns the merged pay day feed across all items.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := parseRange(r.URL.Query(), s.loc, s.horizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.calendarEvents(r, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payloads := make([]calendarEventPayload, 0, len(events))
	for _, ev := range events {
		payloads = append(payloads, calendarEventPayload{
			Date:  ev.Date.Format(time.DateOnly),
			Title: ev.Title,
		})
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) calendarEvents(r *http.Request, from, to time.Time) ([]core.CalendarEvent, error) {
	key := rangeKey{from: from, to: to}
	if cached, ok := s.calendarCache.Get(key); ok {
		return cached, nil
	}

	events, err := s.calendar.Events(r.Context(), from, to)
	if err != nil {
		return nil, err
	}
	s.calendarCache.Set(key, events)
	return events, nil
}

type statsBucketPayload struct {
	PeriodStart string `json:"period_start"`
	Total       string `json:"total"`
	Count       int    `json:"count"`
}

// handleStats returns spend totals bucketed by day or month.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := parseRange(r.URL.Query(), s.loc, s.horizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	granularity := core.Granularity(strings.TrimSpace(r.URL.Query().Get("granularity")))
	if granularity == "" {
		granularity = core.GranularityMonth
	}
	if !granularity.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid granularity %q: must be day or month", granularity))
		return
	}

	key := statsKey{from: from, to: to, granularity: granularity}
	buckets, ok := s.statsCache.Get(key)
	if !ok {
		buckets, err = s.stats.Buckets(r.Context(), from, to, granularity)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.statsCache.Set(key, buckets)
	}

	payloads := make([]statsBucketPayload, 0, len(buckets))
	for _, b := range buckets {
		payloads = append(payloads, statsBucketPayload{
			PeriodStart: b.PeriodStart.Format(time.DateOnly),
			Total:       b.Total.String(),
			Count:       b.Count,
		})
	}
	writeJSON(w, http.StatusOK, payloads)
}

// handleExportCSV streams every payment in the range as CSV, one row per
// stored or projected occurrence.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := parseRange(r.URL.Query(), s.loc, s.horizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.items.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var rows []export.Row
	for i := range items {
		occs, err := s.schedule.Occurrences(r.Context(), &items[i], from, to)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		for _, occ := range occs {
			rows = append(rows, export.Row{
				ItemName:    items[i].Name,
				PeriodStart: occ.StartDate,
				PayDay:      occ.EndDate,
				Amount:      occ.Amount,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].PayDay.Equal(rows[j].PayDay) {
			return rows[i].PayDay.Before(rows[j].PayDay)
		}
		return rows[i].ItemName < rows[j].ItemName
	})

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	if err := export.WriteCSV(w, rows); err != nil {
		writeServiceError(w, r, err)
	}
}

// handleExportICS streams the calendar feed as an iCalendar document.
func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, err := parseRange(r.URL.Query(), s.loc, s.horizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.calendarEvents(r, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.ics"`)
	if err := export.WriteICS(w, events, time.Now()); err != nil {
		writeServiceError(w, r, err)
	}
}
