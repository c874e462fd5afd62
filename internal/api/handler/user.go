package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/middleware"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// UserHandler handles profile requests for the authenticated user
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// HandleProfile handles requests for the current user's profile
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		api.Unauthorized(w, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r, userID)
	case http.MethodPut:
		h.updateProfile(w, r, userID)
	default:
		api.MethodNotAllowed(w)
	}
}

func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			api.NotFound(w, "User not found")
			return
		}
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, user)
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var req models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	// The path identifies the user, never the body.
	req.UserID = userID

	user, err := h.authService.UpdateProfile(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			api.BadRequest(w, "Email already exists")
		case errors.Is(err, service.ErrPasswordTooShort):
			api.BadRequest(w, "Password must be at least 6 characters")
		case errors.Is(err, repository.ErrNotFound):
			api.NotFound(w, "User not found")
		default:
			api.InternalServerError(w, err)
		}
		return
	}

	respondJSON(w, user)
}
