// internal/router/router.go
package router

import (
	"net/http"

	"github.com/oasis-cafe/oasis-service/internal/api/handler"
	"github.com/oasis-cafe/oasis-service/internal/middleware"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// Handlers bundles every request handler the router wires up
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Catalog   *handler.CatalogHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
	Admin     *handler.AdminHandler
	WebSocket *handler.WebSocketHandler
}

// Router handles HTTP routing
type Router struct {
	mux      *http.ServeMux
	auth     *service.AuthService
	handlers Handlers
}

// New creates a new router
func New(auth *service.AuthService, handlers Handlers) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		auth:     auth,
		handlers: handlers,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes() {
	// Public routes
	public := http.NewServeMux()
	public.Handle("/auth/login", http.HandlerFunc(r.handlers.Auth.HandleLogin))
	public.Handle("/auth/register", http.HandlerFunc(r.handlers.Auth.HandleRegister))
	public.Handle("/auth/forgot-password", http.HandlerFunc(r.handlers.Auth.HandleForgotPassword))
	public.Handle("/auth/verify-otp", http.HandlerFunc(r.handlers.Auth.HandleVerifyOTP))
	public.Handle("/auth/reset-password", http.HandlerFunc(r.handlers.Auth.HandleResetPassword))
	public.Handle("/products", http.HandlerFunc(r.handlers.Catalog.HandleProducts))
	public.Handle("/products/", http.HandlerFunc(r.handlers.Catalog.HandleProducts))
	public.Handle("/categories", http.HandlerFunc(r.handlers.Catalog.HandleCategories))

	// Authenticated routes
	authed := http.NewServeMux()
	authed.Handle("/profile", http.HandlerFunc(r.handlers.User.HandleProfile))
	authed.Handle("/orders", http.HandlerFunc(r.handlers.Order.HandleOrders))
	authed.Handle("/orders/", http.HandlerFunc(r.handlers.Order.HandleOrders))
	authed.Handle("/payment/create-intent", http.HandlerFunc(r.handlers.Payment.HandleCreateIntent))
	authed.Handle("/payment/verify", http.HandlerFunc(r.handlers.Payment.HandleVerify))
	authed.Handle("/payment/pending-orders", http.HandlerFunc(r.handlers.Payment.HandlePendingOrders))
	authed.Handle("/payment/reconcile", http.HandlerFunc(r.handlers.Payment.HandleReconcile))

	// Admin routes
	admin := http.NewServeMux()
	admin.Handle("/admin/dashboard", http.HandlerFunc(r.handlers.Admin.HandleDashboard))
	admin.Handle("/admin/orders/", http.HandlerFunc(r.handlers.Order.HandleAdminOrders))
	admin.Handle("/admin/products", http.HandlerFunc(r.handlers.Catalog.HandleAdminProducts))
	admin.Handle("/admin/products/", http.HandlerFunc(r.handlers.Catalog.HandleAdminProducts))

	authed.Handle("/admin/", middleware.RequireRole(models.RoleAdmin)(admin))

	// Authenticated routes fall through from the public mux
	public.Handle("/", middleware.Auth(r.auth)(authed))

	apiChain := middleware.Logger(public)

	r.mux.Handle("/api/", http.StripPrefix("/api", apiChain))
	r.mux.Handle("/ws", r.handlers.WebSocket)
	r.mux.Handle("/health", http.HandlerFunc(r.handleHealth))
}

// handleHealth reports service liveness
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
