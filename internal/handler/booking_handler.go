package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quicket/internal/model"
	"quicket/internal/service"
)

// BookingHandler holds the booking endpoints.
type BookingHandler struct {
	svc   *service.BookingService
	cache *Invalidator
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService, cache *Invalidator) *BookingHandler {
	return &BookingHandler{svc: svc, cache: cache}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	booking, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		respondError(w, err)
		return
	}
	// Seat availability shows up in cached event reads.
	h.cache.PurgeEvents(r.Context())

	writeJSON(w, http.StatusCreated, struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		BookingID string `json:"booking_id"`
	}{true, "booking confirmed", booking.ID})
}

// Cancel handles PUT /api/bookings/{id}/cancel. Cancelling an already
// cancelled booking succeeds without further effect.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.Cancel(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeEvents(r.Context())
	writeMessage(w, http.StatusOK, "booking cancelled successfully")
}

// ListForUser handles GET /api/users/{id}/bookings
func (h *BookingHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	bookings, err := h.svc.ListForUser(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success  bool                `json:"success"`
		Bookings []model.BookingView `json:"bookings"`
	}{true, bookings})
}
