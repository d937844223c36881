package http

import (
	"net/http"
	"strings"
	"time"

	"bindo/internal/recur"
)

type scheduleResponse struct {
	Mode       string  `json:"mode"`
	On         string  `json:"on"`
	NextPayDay *string `json:"next_pay_day"`
	LastPayDay *string `json:"last_pay_day"`
}

// handleItemSchedule answers the next and last pay day for one item, as seen
// from the "on" date (default today).
func (s *Server) handleItemSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := parseItemID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	on := recur.StartOfDay(time.Now(), s.loc)
	if v := strings.TrimSpace(r.URL.Query().Get("on")); v != "" {
		d, err := parseDate(v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		on = d
	}

	item, err := s.items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	next, err := s.schedule.NextPayDay(r.Context(), item, on)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	last, err := s.schedule.LastPayDay(r.Context(), item, on)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		Mode:       string(item.Mode()),
		On:         on.Format(time.DateOnly),
		NextPayDay: formatOptionalDate(next),
		LastPayDay: formatOptionalDate(last),
	})
}

// handleItemOccurrences lists stored plus projected occurrences for one item
// in a half-open range.
func (s *Server) handleItemOccurrences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := parseItemID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := parseRange(r.URL.Query(), s.loc, s.horizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	occs, err := s.schedule.Occurrences(r.Context(), item, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payloads := make([]occurrencePayload, 0, len(occs))
	for _, occ := range occs {
		payloads = append(payloads, payloadFromOccurrence(occ))
	}
	writeJSON(w, http.StatusOK, payloads)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
