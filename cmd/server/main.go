package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oasis-cafe/oasis-service/internal/api/handler"
	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/config"
	"github.com/oasis-cafe/oasis-service/internal/db"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/payment"
	"github.com/oasis-cafe/oasis-service/internal/router"
	"github.com/oasis-cafe/oasis-service/internal/service"
	"github.com/oasis-cafe/oasis-service/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	database, err := db.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	repos := repository.NewRepositories(database)

	// Caches for the checkout and password reset flows
	pendingOrders := cache.New[models.PendingOrder](time.Duration(cfg.Payment.PendingOrderTTLMinutes) * time.Minute)
	otps := cache.New[string](time.Duration(cfg.Payment.OTPTTLMinutes) * time.Minute)
	processedPayments := cache.New[string](time.Duration(cfg.Payment.PendingOrderTTLMinutes) * time.Minute)

	// Payment gateway
	gateway := payment.NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.Currency)

	// Initialize WebSocket hub
	hub := websockets.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(repos, service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	})
	resetService := service.NewPasswordResetService(repos.User, otps)
	catalogService := service.NewCatalogService(repos)
	orderService := service.NewOrderService(repos.Order, repos.Catalog, cfg.Payment.OrderTax)
	reconcileService := service.NewReconcileService(gateway, orderService, pendingOrders, processedPayments, hub)

	// Handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, resetService),
		User:      handler.NewUserHandler(authService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Order:     handler.NewOrderHandler(orderService, hub),
		Payment:   handler.NewPaymentHandler(gateway, reconcileService, pendingOrders),
		Admin:     handler.NewAdminHandler(orderService, authService),
		WebSocket: handler.NewWebSocketHandler(hub),
	}

	// Initialize router
	r := router.New(authService, handlers)

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
