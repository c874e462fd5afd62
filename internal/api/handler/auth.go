package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// AuthHandler handles login, registration and the OTP password reset flow
type AuthHandler struct {
	authService  *service.AuthService
	resetService *service.PasswordResetService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, resetService *service.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
	}
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		api.Unauthorized(w, "Invalid email or password")
		return
	}

	respondJSON(w, struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}{
		Token: token,
		User:  *user,
	})
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" {
		api.BadRequest(w, "Username and email are required")
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			api.BadRequest(w, "Email already exists")
		case errors.Is(err, service.ErrPasswordTooShort):
			api.BadRequest(w, "Password must be at least 6 characters")
		default:
			api.InternalServerError(w, err)
		}
		return
	}

	respondCreated(w, user)
}

// HandleForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" {
		api.BadRequest(w, "Email is required")
		return
	}

	if err := h.resetService.Request(r.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			api.NotFound(w, "No account found for that email")
			return
		}
		api.InternalServerError(w, err)
		return
	}

	respondStatus(w, "OTP sent")
}

// HandleVerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.resetService.Verify(r.Context(), req.Email, req.OTP); err != nil {
		api.BadRequest(w, "Invalid or expired OTP")
		return
	}

	respondStatus(w, "OTP verified")
}

// HandleResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.resetService.Reset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			api.BadRequest(w, "Invalid or expired OTP")
		case errors.Is(err, service.ErrPasswordTooShort):
			api.BadRequest(w, "Password must be at least 6 characters")
		default:
			api.InternalServerError(w, err)
		}
		return
	}

	respondStatus(w, "Password reset successfully")
}
