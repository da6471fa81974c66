package handler

import (
	"net/http"

	"quicket/internal/model"
	"quicket/internal/service"
)

// AuthHandler holds the registration and login endpoints.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// userPayload is the user summary returned on login.
type userPayload struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Token    string     `json:"token"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	User    userPayload `json:"user"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	if _, err := h.svc.Register(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "user registered successfully")
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		User: userPayload{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Token:    token,
		},
	})
}
