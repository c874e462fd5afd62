package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

type fakeOrderStore struct {
	created    *repository.NewOrderParams
	createErr  error
	statusArgs []models.OrderStatus
}

func (f *fakeOrderStore) Create(ctx context.Context, params repository.NewOrderParams) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &params
	return &models.Order{
		OrderID: "O0001",
		UserID:  params.UserID,
		Total:   params.Total,
		Option:  params.Option,
		Status:  models.OrderStatusPreparing,
	}, nil
}

func (f *fakeOrderStore) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeOrderStore) GetByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListForAdmin(ctx context.Context) ([]models.AdminOrder, error) {
	return nil, nil
}

func (f *fakeOrderStore) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{}, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	f.statusArgs = append(f.statusArgs, status)
	return nil
}

type fakeProductLister struct {
	products []models.Product
}

func (f *fakeProductLister) ListProductsForAdmin(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func TestCreateOrderTotal(t *testing.T) {
	store := &fakeOrderStore{}
	svc := NewOrderService(store, &fakeProductLister{}, 2.40)

	draft := models.OrderDraft{
		Cart: []models.CartItem{
			{ProductID: "P0001", Quantity: 2, Price: 10.90},
			{ProductID: "P0002", Quantity: 1, Price: 5.50},
		},
	}

	order, err := svc.CreateOrder(context.Background(), "U0001", draft, "pi_test")
	require.NoError(t, err)

	// 2 * 10.90 + 5.50 + 2.40, exact to the cent
	assert.InDelta(t, 29.70, order.Total, 0.0001)

	require.NotNil(t, store.created)
	assert.Equal(t, "pi_test", store.created.IntentID)
	require.Len(t, store.created.Lines, 2)
	assert.InDelta(t, 21.80, store.created.Lines[0].Subtotal, 0.0001)
	assert.InDelta(t, 5.50, store.created.Lines[1].Subtotal, 0.0001)
}

func TestCreateOrderDefaults(t *testing.T) {
	store := &fakeOrderStore{}
	svc := NewOrderService(store, &fakeProductLister{}, 2.40)

	draft := models.OrderDraft{
		Cart: []models.CartItem{{ProductID: "P0001", Quantity: 1, Price: 4.00}},
	}

	_, err := svc.CreateOrder(context.Background(), "U0001", draft, "pi_test")
	require.NoError(t, err)

	assert.Equal(t, models.OptionDineIn, store.created.Option)
	assert.Equal(t, models.MethodCard, store.created.Method)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc := NewOrderService(&fakeOrderStore{}, &fakeProductLister{}, 2.40)

	_, err := svc.CreateOrder(context.Background(), "U0001", models.OrderDraft{}, "pi_test")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderMissingUser(t *testing.T) {
	svc := NewOrderService(&fakeOrderStore{}, &fakeProductLister{}, 2.40)

	draft := models.OrderDraft{
		Cart: []models.CartItem{{ProductID: "P0001", Quantity: 1, Price: 4.00}},
	}

	_, err := svc.CreateOrder(context.Background(), "", draft, "pi_test")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestCreateOrderBadQuantity(t *testing.T) {
	svc := NewOrderService(&fakeOrderStore{}, &fakeProductLister{}, 2.40)

	draft := models.OrderDraft{
		Cart: []models.CartItem{{ProductID: "P0001", Quantity: 0, Price: 4.00}},
	}

	_, err := svc.CreateOrder(context.Background(), "U0001", draft, "pi_test")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreateOrderNegativePrice(t *testing.T) {
	svc := NewOrderService(&fakeOrderStore{}, &fakeProductLister{}, 2.40)

	draft := models.OrderDraft{
		Cart: []models.CartItem{{ProductID: "P0001", Quantity: 1, Price: -1.00}},
	}

	_, err := svc.CreateOrder(context.Background(), "U0001", draft, "pi_test")
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestUpdateOrderStatusRejectsUnknown(t *testing.T) {
	store := &fakeOrderStore{}
	svc := NewOrderService(store, &fakeProductLister{}, 2.40)

	err := svc.UpdateOrderStatus(context.Background(), "O0001", "CANCELLED")
	assert.True(t, errors.Is(err, models.ErrInvalidOrderStatus))
	assert.Empty(t, store.statusArgs, "invalid status must never reach the store")
}

func TestUpdateOrderStatusAccepted(t *testing.T) {
	store := &fakeOrderStore{}
	svc := NewOrderService(store, &fakeProductLister{}, 2.40)

	err := svc.UpdateOrderStatus(context.Background(), "O0001", "READY")
	require.NoError(t, err)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusReady}, store.statusArgs)
}

func TestDashboardProductStatus(t *testing.T) {
	category := &models.Category{CategoryID: "C0001", Name: "Beverages"}
	lister := &fakeProductLister{
		products: []models.Product{
			{ProductID: "P0001", Name: "Teh Tarik", Stock: 5, IsAvailable: true, Category: category},
			{ProductID: "P0002", Name: "Kopi O", Stock: 0, IsAvailable: true, Category: category},
			{ProductID: "P0003", Name: "Milo", Stock: 3, IsAvailable: false},
		},
	}

	svc := NewOrderService(&fakeOrderStore{}, lister, 2.40)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dashboard.Products, 3)

	assert.Equal(t, "Available", dashboard.Products[0].Status)
	assert.Equal(t, "Unavailable", dashboard.Products[1].Status, "zero stock is unavailable")
	assert.Equal(t, "Unavailable", dashboard.Products[2].Status)
	assert.Equal(t, "Beverages", dashboard.Products[0].Category)
	assert.Equal(t, "Uncategorized", dashboard.Products[2].Category)
}
