package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

// OrderRepository handles order data access
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// NewOrderParams carries the pre-computed values for a transactional order
// insert. Line subtotals and the order total are fixed by the caller at
// checkout prices.
type NewOrderParams struct {
	UserID string
	Total  float64
	Note   *string
	Option models.OrderOption
	Method models.PaymentMethod

	// IntentID is the gateway payment intent that settled the order.
	// Stored on the payment row so reconciliation can find the order
	// again after its in-memory marker expires.
	IntentID string

	Lines []models.OrderLine
}

// Create persists an order header, its lines and a single payment record as
// one transaction. Order and payment IDs are generated read-max-then-increment
// inside the transaction; the whole write is retried a bounded number of
// times when a concurrent order wins the same ID. Each line reserves stock
// with a guarded decrement; a line that cannot be covered aborts the whole
// write with ErrInsufficientStock.
func (r *OrderRepository) Create(ctx context.Context, params NewOrderParams) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		orderID, err := r.createOnce(ctx, params)
		if err == nil {
			return r.GetByOrderID(ctx, orderID)
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to create order after %d attempts: %w", maxIDRetries, lastErr)
}

func (r *OrderRepository) createOnce(ctx context.Context, params NewOrderParams) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lastOrderID string
	err = tx.GetContext(ctx, &lastOrderID,
		`SELECT order_id FROM orders ORDER BY order_id DESC LIMIT 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to get last order ID: %w", err)
	}
	err = nil
	orderID := nextSequentialID("O", lastOrderID)

	var lastPaymentID string
	err = tx.GetContext(ctx, &lastPaymentID,
		`SELECT payment_id FROM payments ORDER BY payment_id DESC LIMIT 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to get last payment ID: %w", err)
	}
	err = nil
	paymentID := nextSequentialID("Y", lastPaymentID)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_id, date, total, note, option, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		orderID,
		params.UserID,
		time.Now(),
		params.Total,
		params.Note,
		params.Option,
		models.OrderStatusPreparing,
	)
	if err != nil {
		return "", wrapCreateError("failed to create order", err)
	}

	for _, line := range params.Lines {
		// Reserve stock before recording the line; an unavailable or
		// under-stocked product aborts the whole order.
		var result sql.Result
		result, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET stock = stock - $1, updated_at = $2
			 WHERE product_id = $3 AND is_available AND stock >= $1`,
			line.Quantity, time.Now(), line.ProductID)
		if err != nil {
			return "", fmt.Errorf("failed to reserve stock: %w", err)
		}

		var rowsAffected int64
		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			err = fmt.Errorf("product %s: %w", line.ProductID, ErrInsufficientStock)
			return "", err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, quantity, subtotal)
			 VALUES ($1, $2, $3, $4)`,
			orderID, line.ProductID, line.Quantity, line.Subtotal)
		if err != nil {
			return "", wrapCreateError("failed to create order line", err)
		}
	}

	var intentID *string
	if params.IntentID != "" {
		intentID = &params.IntentID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (payment_id, order_id, method, payment_intent, payment_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		paymentID, orderID, params.Method, intentID, time.Now())
	if err != nil {
		return "", wrapCreateError("failed to create payment", err)
	}

	err = tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return orderID, nil
}

// wrapCreateError keeps unique violations recognizable through the wrap so
// the retry loop can see them.
func wrapCreateError(msg string, err error) error {
	if isUniqueViolation(err) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// orderLineRow is an order line joined with its product and category
type orderLineRow struct {
	models.OrderLine
	ProductName      string    `db:"product_name"`
	ProductPrice     float64   `db:"product_price"`
	ProductStock     int       `db:"product_stock"`
	ProductAvailable bool      `db:"product_is_available"`
	CategoryID       string    `db:"category_id"`
	CategoryName     string    `db:"category_name"`
	CategoryActive   bool      `db:"category_is_active"`
	LineCreatedAt    time.Time `db:"line_created_at"`
}

func (row orderLineRow) toLine() models.OrderLine {
	line := row.OrderLine
	line.CreatedAt = row.LineCreatedAt
	line.Product = &models.Product{
		ProductID:   line.ProductID,
		Name:        row.ProductName,
		Price:       row.ProductPrice,
		Stock:       row.ProductStock,
		CategoryID:  row.CategoryID,
		IsAvailable: row.ProductAvailable,
		Category: &models.Category{
			CategoryID: row.CategoryID,
			Name:       row.CategoryName,
			IsActive:   row.CategoryActive,
		},
	}
	return line
}

// GetByOrderID retrieves an order fully hydrated: lines with product and
// category joins, plus payment records.
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `
		SELECT order_id, user_id, date, total, note, option, status, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`

	var order models.Order
	err := r.db.GetContext(ctx, &order, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.hydrate(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListByUser retrieves a user's orders newest first, fully hydrated for the
// history page.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := `
		SELECT order_id, user_id, date, total, note, option, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY date DESC
	`

	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	for i := range orders {
		if err := r.hydrate(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *OrderRepository) hydrate(ctx context.Context, order *models.Order) error {
	lineQuery := `
		SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.subtotal,
		       ol.created_at AS line_created_at,
		       p.name AS product_name, p.price AS product_price,
		       p.stock AS product_stock, p.is_available AS product_is_available,
		       c.category_id, c.name AS category_name, c.is_active AS category_is_active
		FROM order_lines ol
		JOIN products p ON ol.product_id = p.product_id
		JOIN categories c ON p.category_id = c.category_id
		WHERE ol.order_id = $1
		ORDER BY ol.id ASC
	`

	var rows []orderLineRow
	if err := r.db.SelectContext(ctx, &rows, lineQuery, order.OrderID); err != nil {
		return fmt.Errorf("failed to get order lines: %w", err)
	}

	order.Lines = make([]models.OrderLine, 0, len(rows))
	for _, row := range rows {
		order.Lines = append(order.Lines, row.toLine())
	}

	paymentQuery := `
		SELECT payment_id, order_id, method, payment_intent, payment_date
		FROM payments
		WHERE order_id = $1
		ORDER BY payment_id ASC
	`

	if err := r.db.SelectContext(ctx, &order.Payments, paymentQuery, order.OrderID); err != nil {
		return fmt.Errorf("failed to get order payments: %w", err)
	}

	return nil
}

// GetByPaymentIntent retrieves the order settled by a gateway payment
// intent, if one exists. This is the durable side of reconciliation
// idempotency; the in-memory marker cache is only a fast path.
func (r *OrderRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	var orderID string
	err := r.db.GetContext(ctx, &orderID,
		`SELECT order_id FROM payments WHERE payment_intent = $1`, intentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment intent: %w", err)
	}

	return r.GetByOrderID(ctx, orderID)
}

// adminOrderRow backs the flattened dashboard order listing
type adminOrderRow struct {
	OrderID  string             `db:"order_id"`
	Username sql.NullString     `db:"username"`
	Status   models.OrderStatus `db:"status"`
	Total    float64            `db:"total"`
}

// ListForAdmin retrieves every order newest first with the customer name and
// a joined "2x Name" line summary, for the admin dashboard.
func (r *OrderRepository) ListForAdmin(ctx context.Context) ([]models.AdminOrder, error) {
	query := `
		SELECT o.order_id, u.username, o.status, o.total
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.user_id
		ORDER BY o.date DESC
	`

	var rows []adminOrderRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list orders for admin: %w", err)
	}

	summaryQuery := `
		SELECT string_agg(ol.quantity || 'x ' || p.name, ', ' ORDER BY ol.id)
		FROM order_lines ol
		JOIN products p ON ol.product_id = p.product_id
		WHERE ol.order_id = $1
	`

	orders := make([]models.AdminOrder, 0, len(rows))
	for _, row := range rows {
		user := "Guest"
		if row.Username.Valid {
			user = row.Username.String
		}

		var items sql.NullString
		if err := r.db.GetContext(ctx, &items, summaryQuery, row.OrderID); err != nil {
			return nil, fmt.Errorf("failed to summarize order lines: %w", err)
		}

		orders = append(orders, models.AdminOrder{
			OrderID: row.OrderID,
			User:    user,
			Status:  row.Status,
			Total:   row.Total,
			Items:   items.String,
		})
	}

	return orders, nil
}

// Stats aggregates total revenue and order count
func (r *OrderRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS total_orders
		FROM orders
	`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate order stats: %w", err)
	}

	return &stats, nil
}

// UpdateStatus updates an order's status
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
