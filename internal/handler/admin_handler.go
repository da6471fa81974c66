package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quicket/internal/model"
	"quicket/internal/service"
)

// AdminHandler holds the admin dashboard and user management endpoints.
type AdminHandler struct {
	svc *service.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// BookingStats handles GET /api/admin/stats/bookings
func (h *AdminHandler) BookingStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.svc.BookingStats(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*model.BookingStats
	}{true, stats})
}

// EventStats handles GET /api/admin/stats/events
func (h *AdminHandler) EventStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.svc.EventStats(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*model.EventStats
	}{true, stats})
}

// UserStats handles GET /api/admin/stats/users
func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.svc.UserStats(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*model.UserStats
	}{true, stats})
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.svc.ListUsers(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Users   []model.User `json:"users"`
	}{true, users})
}

// UpdateUserRole handles PUT /api/admin/users/{id}/role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	if err := h.svc.UpdateUserRole(r.Context(), caller, chi.URLParam(r, "id"), req.Role); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "user role updated successfully")
}
