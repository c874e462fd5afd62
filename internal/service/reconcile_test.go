package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasis-cafe/oasis-service/internal/cache"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/payment"
)

type fakeGateway struct {
	status        payment.IntentStatus
	retrieveErr   error
	retrieveCalls int
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount float64, method models.PaymentMethod) (string, error) {
	return "cs_test", nil
}

func (f *fakeGateway) RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error) {
	f.retrieveCalls++
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return &payment.Intent{ID: id, Status: f.status}, nil
}

type fakeOrderCreator struct {
	createErr  error
	calls      int
	lastUser   string
	lastDraft  models.OrderDraft
	lastIntent string
	existing   map[string]*models.Order
}

func (f *fakeOrderCreator) CreateOrder(ctx context.Context, userID string, draft models.OrderDraft, intentID string) (*models.Order, error) {
	f.calls++
	f.lastUser = userID
	f.lastDraft = draft
	f.lastIntent = intentID
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &models.Order{OrderID: "O0001", UserID: userID}
	f.existing[intentID] = order
	return order, nil
}

func (f *fakeOrderCreator) GetOrderByIntent(ctx context.Context, intentID string) (*models.Order, error) {
	if order, ok := f.existing[intentID]; ok {
		return order, nil
	}
	return nil, repository.ErrNotFound
}

type fakeNotifier struct {
	orders []*models.Order
}

func (f *fakeNotifier) NotifyOrderCreated(order *models.Order) {
	f.orders = append(f.orders, order)
}

func newReconcileFixture(status payment.IntentStatus) (*ReconcileService, *fakeGateway, *fakeOrderCreator, *fakeNotifier, *cache.Store[models.PendingOrder]) {
	gateway := &fakeGateway{status: status}
	creator := &fakeOrderCreator{existing: make(map[string]*models.Order)}
	notifier := &fakeNotifier{}
	pending := cache.New[models.PendingOrder](time.Hour)
	processed := cache.New[string](time.Hour)
	svc := NewReconcileService(gateway, creator, pending, processed, notifier)
	return svc, gateway, creator, notifier, pending
}

func cardDraft() *models.OrderDraft {
	return &models.OrderDraft{
		Cart:          []models.CartItem{{ProductID: "P0001", Quantity: 1, Price: 9.90}},
		PaymentMethod: models.MethodCard,
	}
}

func TestReconcileCardSuccess(t *testing.T) {
	svc, _, creator, notifier, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})

	assert.Equal(t, "success", outcome.Status)
	assert.Equal(t, MsgOrderPlaced, outcome.Message)
	assert.Equal(t, "O0001", outcome.OrderID)
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, "U0001", creator.lastUser)
	assert.Equal(t, "pi_123", creator.lastIntent)
	require.Len(t, notifier.orders, 1)
}

func TestReconcileFPXRoundTrip(t *testing.T) {
	svc, _, creator, _, pending := newReconcileFixture(payment.StatusSucceeded)

	pending.Put("token-1", models.PendingOrder{
		Draft: models.OrderDraft{
			Cart:          []models.CartItem{{ProductID: "P0002", Quantity: 2, Price: 4.50}},
			PaymentMethod: models.MethodFPX,
		},
		UserID: "U0002",
	})

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_fpx",
		RedirectStatus:  "succeeded",
		OrderToken:      "token-1",
	})

	assert.Equal(t, "success", outcome.Status)
	assert.Equal(t, "U0002", creator.lastUser)
	assert.Equal(t, models.MethodFPX, creator.lastDraft.PaymentMethod)

	// The parked draft is consumed on success.
	_, ok := pending.Get("token-1")
	assert.False(t, ok)
}

func TestReconcileMissingIntent(t *testing.T) {
	svc, gateway, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{})

	assert.Equal(t, "error", outcome.Status)
	assert.Equal(t, MsgMissingIntent, outcome.Message)
	assert.Zero(t, gateway.retrieveCalls)
	assert.Zero(t, creator.calls)
}

func TestReconcileRedirectFailedSkipsGateway(t *testing.T) {
	svc, gateway, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		RedirectStatus:  "failed",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})

	assert.Equal(t, "error", outcome.Status)
	assert.Equal(t, MsgGatewayDeclined, outcome.Message)
	assert.Zero(t, gateway.retrieveCalls, "a failed redirect needs no verification call")
	assert.Zero(t, creator.calls)
}

func TestReconcileIdempotent(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	req := ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	}

	first := svc.Reconcile(context.Background(), req)
	second := svc.Reconcile(context.Background(), req)

	assert.Equal(t, "success", first.Status)
	assert.Equal(t, "success", second.Status)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, creator.calls, "a repeated invocation must not create a second order")
}

func TestReconcileNonSucceededStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  payment.IntentStatus
		message string
	}{
		{"requires payment method", payment.StatusRequiresPaymentMethod, MsgNotCompleted},
		{"canceled", payment.StatusCanceled, MsgCanceled},
		{"requires action", payment.StatusRequiresAction, MsgNeedsAction},
		{"processing", payment.StatusProcessing, MsgStillProcessing},
		{"unknown", payment.IntentStatus("something_else"), MsgPaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, creator, _, _ := newReconcileFixture(tt.status)

			outcome := svc.Reconcile(context.Background(), ReconcileRequest{
				PaymentIntentID: "pi_123",
				Draft:           cardDraft(),
				UserID:          "U0001",
			})

			assert.Equal(t, "error", outcome.Status)
			assert.Equal(t, tt.message, outcome.Message)
			assert.Zero(t, creator.calls)
		})
	}
}

func TestReconcileVerifyError(t *testing.T) {
	svc, gateway, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)
	gateway.retrieveErr = errors.New("network down")

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})

	assert.Equal(t, "error", outcome.Status)
	assert.Equal(t, MsgVerifyFailed, outcome.Message)
	assert.Zero(t, creator.calls)
}

func TestReconcileMissingDraft(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_lost",
		UserID:          "U0001",
	})

	assert.Equal(t, "error", outcome.Status)
	assert.Contains(t, outcome.Message, "contact support")
	assert.Contains(t, outcome.Message, "pi_lost")
	assert.Zero(t, creator.calls)
}

func TestReconcileEmptyCart(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_empty",
		Draft:           &models.OrderDraft{},
		UserID:          "U0001",
	})

	assert.Equal(t, "error", outcome.Status)
	assert.Contains(t, outcome.Message, "contact support")
	assert.Contains(t, outcome.Message, "pi_empty")
	assert.Zero(t, creator.calls)
}

func TestReconcileOrderCreationFailure(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)
	creator.createErr = errors.New("db down")

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})

	assert.Equal(t, "error", outcome.Status)
	assert.Contains(t, outcome.Message, "contact support")
	assert.Contains(t, outcome.Message, "pi_123")
}

func TestReconcileIdempotentAfterMarkerExpiry(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	req := ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	}

	first := svc.Reconcile(context.Background(), req)
	require.Equal(t, "success", first.Status)

	// Simulate the in-memory marker aging out; the payment row still
	// records the intent, so a replay must resolve to the same order.
	svc.processed.Delete("pi_123")

	second := svc.Reconcile(context.Background(), req)
	assert.Equal(t, "success", second.Status)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, creator.calls, "a replay after marker expiry must not create a second order")
}

func TestReconcileReleasesIntentLocks(t *testing.T) {
	svc, _, _, _, _ := newReconcileFixture(payment.StatusSucceeded)

	svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})
	svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_456",
		RedirectStatus:  "failed",
	})

	svc.mu.Lock()
	held := len(svc.inflight)
	svc.mu.Unlock()
	assert.Zero(t, held, "settled passes must not leave per-intent locks behind")
}

func TestReconcileExpiredTokenFallsBackToRequestDraft(t *testing.T) {
	svc, _, creator, _, _ := newReconcileFixture(payment.StatusSucceeded)

	outcome := svc.Reconcile(context.Background(), ReconcileRequest{
		PaymentIntentID: "pi_123",
		OrderToken:      "expired-token",
		Draft:           cardDraft(),
		UserID:          "U0001",
	})

	assert.Equal(t, "success", outcome.Status)
	assert.Equal(t, 1, creator.calls)
}
