package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wethinkt/go-daybook/internal/journal"
)

// DaysResponse lists the days that have entries.
type DaysResponse struct {
	Days []journal.DaySummary `json:"days"`
}

// EntriesResponse lists the entries of one day.
type EntriesResponse struct {
	Day     string          `json:"day"`
	Entries []journal.Entry `json:"entries"`
}

// AppendRequest is the body of POST /api/v1/days/{day}/entries.
type AppendRequest struct {
	Text string       `json:"text"`
	Role journal.Role `json:"role,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}

func (s *HTTPServer) handleGetDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.journal.Days(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_days_failed", err.Error())
		return
	}
	if days == nil {
		days = []journal.DaySummary{}
	}
	writeJSON(w, http.StatusOK, DaysResponse{Days: days})
}

func (s *HTTPServer) handleGetEntries(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	entries, err := s.journal.Entries(r.Context(), day)
	switch {
	case errors.Is(err, journal.ErrInvalidDay):
		writeError(w, http.StatusBadRequest, "invalid_day", "Day must be formatted YYYY-MM-DD")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "list_entries_failed", err.Error())
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, EntriesResponse{Day: day, Entries: entries})
}

func (s *HTTPServer) handlePostEntry(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")

	var req AppendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	entry, err := s.journal.Append(r.Context(), journal.Entry{Day: day, Role: req.Role, Text: req.Text})
	switch {
	case errors.Is(err, journal.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "validation_error", "text is required")
		return
	case errors.Is(err, journal.ErrInvalidDay):
		writeError(w, http.StatusBadRequest, "invalid_day", "Day must be formatted YYYY-MM-DD")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "append_failed", err.Error())
		return
	}
	entriesAppendedTotal.Inc()
	writeJSON(w, http.StatusCreated, entry)
}
