package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quicket/internal/model"
	"quicket/internal/service"
)

// VenueHandler holds the venue endpoints.
type VenueHandler struct {
	svc   *service.VenueService
	cache *Invalidator
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(svc *service.VenueService, cache *Invalidator) *VenueHandler {
	return &VenueHandler{svc: svc, cache: cache}
}

// List handles GET /api/venues
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	venues, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Venues  []model.Venue `json:"venues"`
	}{true, venues})
}

// Get handles GET /api/venues/{id}
func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	venue, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool               `json:"success"`
		Venue   *model.VenueDetail `json:"venue"`
	}{true, venue})
}

// Create handles POST /api/venues
func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.CreateVenueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	venue, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeVenues(r.Context())

	writeJSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		VenueID string `json:"venue_id"`
	}{true, "venue created successfully", venue.ID})
}

// Update handles PUT /api/venues/{id}
func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.UpdateVenueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	if err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), req); err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeVenues(r.Context())
	h.cache.PurgeEvents(r.Context())
	writeMessage(w, http.StatusOK, "venue updated successfully")
}

// Delete handles DELETE /api/venues/{id}
func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	h.cache.PurgeVenues(r.Context())
	writeMessage(w, http.StatusOK, "venue deleted successfully")
}
