package service

import (
	"context"
	"fmt"

	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/shopspring/decimal"
)

// orderStore is the slice of the order repository the service needs; tests
// substitute a fake.
type orderStore interface {
	Create(ctx context.Context, params repository.NewOrderParams) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListForAdmin(ctx context.Context) ([]models.AdminOrder, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// productLister is the slice of the catalog repository the dashboard needs
type productLister interface {
	ListProductsForAdmin(ctx context.Context) ([]models.Product, error)
}

// OrderService handles order-related business logic
type OrderService struct {
	orders   orderStore
	products productLister

	// orderTax is the flat per-order add-on applied on top of the cart sum
	orderTax decimal.Decimal
}

// NewOrderService creates a new order service
func NewOrderService(orders orderStore, products productLister, orderTax float64) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		orderTax: decimal.NewFromFloat(orderTax),
	}
}

// CreateOrder validates a draft and persists it as an order with its lines
// and a single payment record carrying the settling intent ID. The total is
// the exact cart sum plus the configured tax, computed in decimal so it is
// correct to the cent.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, draft models.OrderDraft, intentID string) (*models.Order, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if len(draft.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	option := draft.Option
	if option == "" {
		option = models.OptionDineIn
	}
	method := draft.PaymentMethod
	if method == "" {
		method = models.MethodCard
	}

	total := s.orderTax
	lines := make([]models.OrderLine, 0, len(draft.Cart))

	for _, item := range draft.Cart {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInvalidQuantity)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrNegativePrice)
		}

		subtotal := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)

		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  subtotal.InexactFloat64(),
		})
	}

	params := repository.NewOrderParams{
		UserID:   userID,
		Total:    total.InexactFloat64(),
		Note:     draft.Note,
		Option:   option,
		Method:   method,
		IntentID: intentID,
		Lines:    lines,
	}

	order, err := s.orders.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetOrder retrieves a fully hydrated order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.GetByOrderID(ctx, orderID)
}

// GetOrderByIntent retrieves the order settled by a gateway payment intent
func (s *OrderService) GetOrderByIntent(ctx context.Context, intentID string) (*models.Order, error) {
	return s.orders.GetByPaymentIntent(ctx, intentID)
}

// GetUserOrders retrieves a user's order history, newest first
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateOrderStatus validates and applies a status update. Unknown status
// values are rejected before anything reaches the store.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, rawStatus string) error {
	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return err
	}

	return s.orders.UpdateStatus(ctx, orderID, status)
}

// Dashboard assembles the admin dashboard: flattened orders and products
// plus revenue aggregates. The admin display name is filled in by the
// handler from the authenticated user.
func (s *OrderService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	orders, err := s.orders.ListForAdmin(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListProductsForAdmin(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}

	adminProducts := make([]models.AdminProduct, 0, len(products))
	for _, p := range products {
		category := "Uncategorized"
		if p.Category != nil {
			category = p.Category.Name
		}

		status := "Unavailable"
		if p.IsAvailable && p.Stock > 0 {
			status = "Available"
		}

		adminProducts = append(adminProducts, models.AdminProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			Category:  category,
			Status:    status,
		})
	}

	return &models.Dashboard{
		Orders:   orders,
		Products: adminProducts,
		Stats:    *stats,
	}, nil
}
