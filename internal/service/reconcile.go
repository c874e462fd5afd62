package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/payment"
)

// orderCreator is the slice of OrderService the reconciler needs
type orderCreator interface {
	CreateOrder(ctx context.Context, userID string, draft models.OrderDraft, intentID string) (*models.Order, error)
	GetOrderByIntent(ctx context.Context, intentID string) (*models.Order, error)
}

// orderNotifier receives the created order once reconciliation settles it;
// the websocket hub implements this for the admin dashboard.
type orderNotifier interface {
	NotifyOrderCreated(order *models.Order)
}

// ReconcileRequest carries everything the client learned from the gateway
// redirect plus its local fallback draft (the CARD path never leaves the
// page, so its draft arrives in the request instead of the server cache).
type ReconcileRequest struct {
	PaymentIntentID string             `json:"payment_intent"`
	RedirectStatus  string             `json:"redirect_status"`
	OrderToken      string             `json:"order_token"`
	Draft           *models.OrderDraft `json:"draft"`
	UserID          string             `json:"user_id"`
}

// ReconcileOutcome is the terminal state of one reconciliation pass
type ReconcileOutcome struct {
	Status  string        `json:"status"` // "success" or "error"
	Message string        `json:"message"`
	OrderID string        `json:"order_id,omitempty"`
	Order   *models.Order `json:"order,omitempty"`
}

// User-facing messages for every terminal state of the reconciliation flow.
// Each failure class the flow can hit has a defined message; raw errors never
// reach the client.
const (
	MsgOrderPlaced       = "Payment successful! Your order has been placed."
	MsgMissingIntent     = "Invalid payment session. Please try again from checkout."
	MsgGatewayDeclined   = "Payment was not completed at the payment gateway. Please try again."
	MsgVerifyFailed      = "Payment verification failed. Please try again."
	MsgNotCompleted      = "Payment was not completed. Please return to checkout and try again."
	MsgCanceled          = "Payment was canceled. Please try again."
	MsgNeedsAction       = "Payment requires additional authentication. Please try again."
	MsgStillProcessing   = "Payment is still processing. Please wait a moment and refresh the page."
	MsgPaymentFailed     = "Payment failed. Please try again."
	msgSupportOrderFmt   = "Order information not found. Payment was successful but the order could not be created. Please contact support with payment intent %s."
	msgSupportCartFmt    = "Cart information is missing. Please contact support with payment intent %s."
	msgSupportCreatedFmt = "Your payment succeeded but the order could not be recorded. Please contact support with payment intent %s."
)

// ReconcileService confirms a payment with the gateway and makes sure exactly
// one order exists for it. The two sides cannot be committed atomically, so
// the pass is built to be safely re-runnable: a processed marker keyed by
// intent ID short-circuits repeats, and concurrent passes for the same intent
// are serialized.
type ReconcileService struct {
	gateway   payment.Gateway
	orders    orderCreator
	pending   *cache.Store[models.PendingOrder]
	processed *cache.Store[string]
	notifier  orderNotifier

	mu       sync.Mutex
	inflight map[string]*intentLock
}

// intentLock is a refcounted per-intent mutex so the inflight map can shed
// entries once the last concurrent pass for an intent settles
type intentLock struct {
	mu   sync.Mutex
	refs int
}

// NewReconcileService creates a new reconcile service. notifier may be nil.
func NewReconcileService(
	gateway payment.Gateway,
	orders orderCreator,
	pending *cache.Store[models.PendingOrder],
	processed *cache.Store[string],
	notifier orderNotifier,
) *ReconcileService {
	return &ReconcileService{
		gateway:   gateway,
		orders:    orders,
		pending:   pending,
		processed: processed,
		notifier:  notifier,
		inflight:  make(map[string]*intentLock),
	}
}

// Reconcile runs one verification pass. It is idempotent per payment intent:
// a second invocation after success reports success again without creating
// another order.
func (s *ReconcileService) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileOutcome {
	if req.PaymentIntentID == "" {
		return errOutcome(MsgMissingIntent)
	}

	unlock := s.lockIntent(req.PaymentIntentID)
	defer unlock()

	// Already reconciled: the order exists, just say so again.
	if orderID, ok := s.processed.Get(req.PaymentIntentID); ok {
		return ReconcileOutcome{Status: "success", Message: MsgOrderPlaced, OrderID: orderID}
	}

	// The marker cache is only a fast path; the payment row carries the
	// durable intent-to-order mapping. A replay arriving after the marker
	// expired resolves to the original order instead of creating another.
	if order, err := s.orders.GetOrderByIntent(ctx, req.PaymentIntentID); err == nil {
		s.processed.Put(req.PaymentIntentID, order.OrderID)
		return ReconcileOutcome{
			Status:  "success",
			Message: MsgOrderPlaced,
			OrderID: order.OrderID,
			Order:   order,
		}
	}

	// An explicit gateway failure on the redirect needs no verification
	// call; nothing was charged.
	if req.RedirectStatus == "failed" {
		return errOutcome(MsgGatewayDeclined)
	}

	// The redirect query string can be spoofed or stale; only the
	// gateway's own record of the intent decides.
	intent, err := s.gateway.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		log.Printf("Failed to verify payment intent %s: %v", req.PaymentIntentID, err)
		return errOutcome(MsgVerifyFailed)
	}

	if intent.Status != payment.StatusSucceeded {
		return errOutcome(messageForStatus(intent.Status))
	}

	draft, userID := s.recoverDraft(req)

	if draft == nil || userID == "" {
		log.Printf("Reconciliation gap: intent %s succeeded but no order draft found", req.PaymentIntentID)
		return errOutcome(fmt.Sprintf(msgSupportOrderFmt, req.PaymentIntentID))
	}
	if len(draft.Cart) == 0 {
		log.Printf("Reconciliation gap: intent %s succeeded but draft cart is empty", req.PaymentIntentID)
		return errOutcome(fmt.Sprintf(msgSupportCartFmt, req.PaymentIntentID))
	}

	order, err := s.orders.CreateOrder(ctx, userID, *draft, req.PaymentIntentID)
	if err != nil {
		log.Printf("Reconciliation gap: intent %s succeeded but order creation failed: %v", req.PaymentIntentID, err)
		return errOutcome(fmt.Sprintf(msgSupportCreatedFmt, req.PaymentIntentID))
	}

	if req.OrderToken != "" {
		s.pending.Delete(req.OrderToken)
	}
	s.processed.Put(req.PaymentIntentID, order.OrderID)

	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(order)
	}

	return ReconcileOutcome{
		Status:  "success",
		Message: MsgOrderPlaced,
		OrderID: order.OrderID,
		Order:   order,
	}
}

// recoverDraft locates the order draft for this pass. The server-side
// pending cache (FPX redirect path) is authoritative when a token is
// present; otherwise the request's own draft covers the CARD path.
func (s *ReconcileService) recoverDraft(req ReconcileRequest) (*models.OrderDraft, string) {
	if req.OrderToken != "" {
		if pending, ok := s.pending.Get(req.OrderToken); ok {
			draft := pending.Draft
			return &draft, pending.UserID
		}
	}

	return req.Draft, req.UserID
}

// messageForStatus maps each non-succeeded intent status to its user-facing
// guidance. Processing is the one state that may still resolve to success,
// so it advises waiting rather than retrying.
func messageForStatus(status payment.IntentStatus) string {
	switch status {
	case payment.StatusRequiresPaymentMethod:
		return MsgNotCompleted
	case payment.StatusCanceled:
		return MsgCanceled
	case payment.StatusRequiresAction:
		return MsgNeedsAction
	case payment.StatusProcessing:
		return MsgStillProcessing
	default:
		return MsgPaymentFailed
	}
}

// lockIntent serializes reconciliation passes for a single intent so a
// doubled-up client invocation cannot race past the processed marker. The
// returned release drops the map entry when no other pass holds it.
func (s *ReconcileService) lockIntent(intentID string) func() {
	s.mu.Lock()
	l, ok := s.inflight[intentID]
	if !ok {
		l = &intentLock{}
		s.inflight[intentID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.inflight, intentID)
		}
		s.mu.Unlock()
	}
}

func errOutcome(message string) ReconcileOutcome {
	return ReconcileOutcome{Status: "error", Message: message}
}
