package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quicket/internal/model"
	"quicket/internal/service"
)

// EventHandler holds the event endpoints.
type EventHandler struct {
	svc   *service.EventService
	cache *Invalidator
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, cache *Invalidator) *EventHandler {
	return &EventHandler{svc: svc, cache: cache}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.svc.List(r.Context(), q.Get("type"), q.Get("status"), q.Get("search"), q.Get("featured") == "true")
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		Events  []model.EventSummary `json:"events"`
	}{true, events})
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool               `json:"success"`
		Event   *model.EventDetail `json:"event"`
	}{true, event})
}

// AvailableSeats handles GET /api/events/{id}/available-seats
func (h *EventHandler) AvailableSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.svc.AvailableSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success        bool `json:"success"`
		AvailableSeats int  `json:"available_seats"`
	}{true, seats})
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	event, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeEvents(r.Context())
	h.cache.PurgeVenues(r.Context())

	writeJSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		EventID string `json:"event_id"`
	}{true, "event created successfully", event.ID})
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	if err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), req); err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeEvents(r.Context())
	h.cache.PurgeVenues(r.Context())
	writeMessage(w, http.StatusOK, "event updated successfully")
}

// Delete handles DELETE /api/events/{id}. An event with confirmed
// bookings is cancelled instead of removed so ticket holders keep a
// record of what happened.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	cancelled, err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeEvents(r.Context())
	h.cache.PurgeVenues(r.Context())

	if cancelled {
		writeMessage(w, http.StatusOK, "event has confirmed bookings and was cancelled instead of deleted")
		return
	}
	writeMessage(w, http.StatusOK, "event deleted successfully")
}
