package handler

import (
	"log/slog"
	"net/http"

	"dataroom/internal/domain/services"
	"dataroom/internal/httputil"
)

// UserHandler handles login, registration and profile requests
type UserHandler struct {
	*errorResponder
	userService services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger *slog.Logger, debug bool) *UserHandler {
	return &UserHandler{
		errorResponder: newErrorResponder(logger, debug),
		userService:    userService,
		logger:         logger,
	}
}

// Login issues a token, provisioning the user on first login
// POST /login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	token, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, token)
}

// Register creates a user
// POST /user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	token, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, token)
}

// GetUser returns the caller's profile
// GET /user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// UpdateUser replaces the caller's username and email
// PUT /user
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser removes the caller and everything they own
// DELETE /user
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "user deleted")
}
