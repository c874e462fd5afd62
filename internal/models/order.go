package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// OrderStatus represents the kitchen status of an order
type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// ParseOrderStatus validates a raw status value. Anything outside the three
// known states is rejected so a bad update can never reach the store.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w %q: must be PREPARING, READY, or COMPLETED", ErrInvalidOrderStatus, s)
}

// OrderOption represents how the customer takes the order
type OrderOption string

const (
	OptionDineIn   OrderOption = "Dine-in"
	OptionTakeaway OrderOption = "Takeaway"
)

// PaymentMethod is the payment rail used at checkout
type PaymentMethod string

const (
	MethodCard PaymentMethod = "CARD"
	MethodFPX  PaymentMethod = "FPX"
)

// ParsePaymentMethod validates a raw payment method value
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCard, MethodFPX:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w %q: must be CARD or FPX", ErrInvalidPaymentMethod, s)
}

// Order represents a customer order
type Order struct {
	OrderID   string      `db:"order_id" json:"order_id"`
	UserID    string      `db:"user_id" json:"user_id"`
	Date      time.Time   `db:"date" json:"date"`
	Total     float64     `db:"total" json:"total"`
	Note      *string     `db:"note" json:"note"`
	Option    OrderOption `db:"option" json:"option"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`

	// Not stored in the orders table directly
	Lines    []OrderLine `db:"-" json:"order_lists,omitempty"`
	Payments []Payment   `db:"-" json:"payments,omitempty"`
	User     *User       `db:"-" json:"user,omitempty"`
}

// OrderLine is a single product line within an order. Subtotal is fixed at
// order time and never recomputed from the current product price.
type OrderLine struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Subtotal  float64   `db:"subtotal" json:"subtotal"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Not stored in the order_lines table directly
	Product *Product `db:"-" json:"product,omitempty"`
}

// Payment records the settled payment for an order. PaymentIntent holds the
// gateway intent that settled it, making the intent-to-order mapping durable.
type Payment struct {
	PaymentID     string        `db:"payment_id" json:"payment_id"`
	OrderID       string        `db:"order_id" json:"order_id"`
	Method        PaymentMethod `db:"method" json:"method"`
	PaymentIntent *string       `db:"payment_intent" json:"payment_intent,omitempty"`
	PaymentDate   time.Time     `db:"payment_date" json:"payment_date"`
}

// CartItem is one product line of a client cart. Price is the unit price the
// customer saw at checkout.
type CartItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// OrderDraft is the not-yet-persisted order a customer carries through the
// payment flow.
type OrderDraft struct {
	Cart          []CartItem    `json:"cart"`
	Note          *string       `json:"note"`
	Option        OrderOption   `json:"option"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// PendingOrder is the server-side snapshot of a draft parked while the
// customer is away at the payment gateway.
type PendingOrder struct {
	Draft  OrderDraft `json:"draft"`
	UserID string     `json:"user_id"`
}
