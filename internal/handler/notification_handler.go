package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quicket/internal/model"
	"quicket/internal/service"
)

// NotificationHandler holds the notification inbox endpoints.
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type notificationListResponse struct {
	Success       bool                 `json:"success"`
	Notifications []model.Notification `json:"notifications"`
	Total         int                  `json:"total"`
	Page          int                  `json:"page,omitempty"`
	PerPage       int                  `json:"per_page,omitempty"`
	TotalPages    int                  `json:"total_pages,omitempty"`
}

// List handles GET /api/users/{id}/notifications. With ?limit=N it
// returns the N newest entries; otherwise it pages with ?page and
// ?per_page.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID := chi.URLParam(r, "id")
	query, err := parseNotificationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	notifications, total, err := h.svc.List(r.Context(), caller, userID, query)
	if err != nil {
		respondError(w, err)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	resp := notificationListResponse{
		Success:       true,
		Notifications: notifications,
		Total:         total,
	}
	if query.Limit == 0 {
		perPage := query.PerPage
		if perPage < 1 {
			perPage = 10
		}
		resp.Page = query.Page
		if resp.Page < 1 {
			resp.Page = 1
		}
		resp.PerPage = perPage
		resp.TotalPages = (total + perPage - 1) / perPage
	}
	writeJSON(w, http.StatusOK, resp)
}

// UnreadCount handles GET /api/users/{id}/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := h.svc.UnreadCount(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}{true, count})
}

// MarkRead handles PATCH /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.MarkRead(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "notification marked as read")
}

// MarkAllRead handles PATCH /api/users/{id}/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.MarkAllRead(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "all notifications marked as read")
}

// Delete handles DELETE /api/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "notification deleted")
}

func parseNotificationQuery(r *http.Request) (model.NotificationQuery, error) {
	q := r.URL.Query()
	query := model.NotificationQuery{
		UnreadOnly: q.Get("unread_only") == "true",
	}
	var err error
	if query.Limit, err = intParam(q.Get("limit"), 0); err != nil {
		return query, err
	}
	if query.Page, err = intParam(q.Get("page"), 1); err != nil {
		return query, err
	}
	if query.PerPage, err = intParam(q.Get("per_page"), 10); err != nil {
		return query, err
	}
	return query, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid integer", raw)
	}
	return n, nil
}
