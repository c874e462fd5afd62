package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/middleware"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/service"
	"github.com/oasis-cafe/oasis-service/internal/websockets"
)

// OrderHandler handles order history and admin status updates
type OrderHandler struct {
	orderService *service.OrderService
	hub          *websockets.Hub
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, hub *websockets.Hub) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		hub:          hub,
	}
}

// HandleOrders handles requests under /orders for the authenticated customer
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		api.Unauthorized(w, "Unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/orders")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.listOrders(w, r, userID)
		return
	}

	h.getOrder(w, r, userID, path)
}

// HandleAdminOrders handles PUT /admin/orders/{id} status updates
func (h *OrderHandler) HandleAdminOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		api.MethodNotAllowed(w)
		return
	}

	orderID := strings.TrimPrefix(r.URL.Path, "/admin/orders")
	orderID = strings.TrimPrefix(orderID, "/")
	if orderID == "" {
		api.BadRequest(w, "Order ID is required")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.orderService.UpdateOrderStatus(r.Context(), orderID, req.Status); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidOrderStatus):
			api.BadRequest(w, "Invalid order status")
		case errors.Is(err, repository.ErrNotFound):
			api.NotFound(w, "Order not found")
		default:
			api.InternalServerError(w, err)
		}
		return
	}

	if order, err := h.orderService.GetOrder(r.Context(), orderID); err == nil {
		h.hub.NotifyOrderStatus(order)
	}

	respondStatus(w, "Order status updated")
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request, userID string) {
	orders, err := h.orderService.GetUserOrders(r.Context(), userID)
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, orders)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, userID, orderID string) {
	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			api.NotFound(w, "Order not found")
			return
		}
		api.InternalServerError(w, err)
		return
	}

	// Customers only see their own orders.
	role, _ := middleware.GetUserRole(r.Context())
	if order.UserID != userID && role != models.RoleAdmin {
		api.NotFound(w, "Order not found")
		return
	}

	respondJSON(w, order)
}
