package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// handleItems serves the collection: GET lists, POST creates.
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listItems(w, r)
	case http.MethodPost:
		s.createItem(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payloads := make([]itemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, payloadFromItem(item))
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := itemFromPayload(p, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = uuid.Nil // ids are assigned server side on create
	if err := item.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.items.CreateItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	writeJSON(w, http.StatusCreated, payloadFromItem(*created))
}

// handleItem serves a single item addressed by the id query parameter.
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getItem(w, r)
	case http.MethodPut:
		s.updateItem(w, r)
	case http.MethodDelete:
		s.deleteItem(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payloadFromItem(*item))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := itemFromPayload(p, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = id
	if err := item.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.items.UpdateItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	writeJSON(w, http.StatusOK, payloadFromItem(*updated))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.items.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	w.WriteHeader(http.StatusNoContent)
}

type inferRequest struct {
	Dates []string `json:"dates"`
}

type inferResponse struct {
	Rule        rulePayload `json:"rule"`
	Description string      `json:"description"`
}

// handleInfer guesses a recurrence rule from observed pay days.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req inferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := parseDate(raw, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dates = append(dates, d)
	}

	rule, err := s.items.InferRule(dates)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, inferResponse{
		Rule:        rulePayload{Every: rule.Every, Unit: string(rule.Unit)},
		Description: rule.String(),
	})
}
