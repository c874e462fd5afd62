package handler

import (
	"net/http"

	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/middleware"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// AdminHandler handles the admin dashboard
type AdminHandler struct {
	orderService *service.OrderService
	authService  *service.AuthService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orderService *service.OrderService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		authService:  authService,
	}
}

// HandleDashboard handles GET /admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	dashboard, err := h.orderService.Dashboard(r.Context())
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	if userID, ok := middleware.GetUserID(r.Context()); ok {
		if admin, err := h.authService.GetUser(r.Context(), userID); err == nil {
			dashboard.AdminName = admin.Username
		}
	}

	respondJSON(w, dashboard)
}
