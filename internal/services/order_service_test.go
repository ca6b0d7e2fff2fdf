package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db         *gorm.DB
	store      *repositories.Store
	publisher  *mockPublisher
	customer   *models.Customer
	margherita *models.Pizza
	pepperoni  *models.Pizza
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := setupTestDB(t)
	store := repositories.NewStore(db)
	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return &orderFixture{
		db:         db,
		store:      store,
		publisher:  publisher,
		customer:   seedCustomer(t, store, "hungry@example.com", models.RoleCustomer),
		margherita: seedPizza(t, store, "Margherita", "8.50", true),
		pepperoni:  seedPizza(t, store, "Pepperoni", "9.50", true),
	}
}

func (f *orderFixture) service(opts ...OrderServiceOption) OrderService {
	return NewOrderService(f.store, f.publisher, opts...)
}

func (f *orderFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *orderFixture) placeOrder(t *testing.T, service OrderService) *models.Order {
	t.Helper()
	order, err := service.CreateOrder(context.Background(), principalOf(f.customer), f.customer.ID,
		[]OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	require.NoError(t, err)
	return order
}

func TestCreateOrderTotals(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.service().CreateOrder(context.Background(), principalOf(f.customer), f.customer.ID, []OrderLineInput{
		{PizzaID: f.margherita.ID, Quantity: 2},
		{PizzaID: f.pepperoni.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, "26.50", order.TotalAmount.StringFixed(2))
	require.Len(t, order.OrderLines, 2)
	assert.Equal(t, "17.00", order.OrderLines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "9.50", order.OrderLines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "Margherita", order.OrderLines[0].Pizza.Name)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.OrderEvent) bool {
		return e.Type == events.OrderCreated && e.OrderNumber == order.OrderNumber
	}))
}

func TestCreateOrderSnapshotsUnitPrice(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service()
	order := f.placeOrder(t, service)

	pizza, err := f.store.Pizzas().FindByID(context.Background(), f.margherita.ID)
	require.NoError(t, err)
	pizza.Price = pizza.Price.Add(pizza.Price)
	require.NoError(t, f.store.Pizzas().Update(context.Background(), pizza))

	reloaded, err := service.GetOrder(context.Background(), principalOf(f.customer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.50", reloaded.OrderLines[0].UnitPrice.StringFixed(2))
}

func TestCreateOrderWithUnavailablePizzaPersistsNothing(t *testing.T) {
	f := newOrderFixture(t)
	soldOut := seedPizza(t, f.store, "Truffle", "15.00", false)

	_, err := f.service().CreateOrder(context.Background(), principalOf(f.customer), f.customer.ID, []OrderLineInput{
		{PizzaID: f.margherita.ID, Quantity: 1},
		{PizzaID: soldOut.ID, Quantity: 1},
	})

	businessErr := requireErrorAs[*models.BusinessError](t, err)
	assert.Contains(t, businessErr.Message, "Truffle")
	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderLine{}))
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateOrderReferenceErrors(t *testing.T) {
	f := newOrderFixture(t)
	admin := Principal{Role: models.RoleAdmin}
	ctx := context.Background()

	_, err := f.service().CreateOrder(ctx, admin, 999, []OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	businessErr := requireErrorAs[*models.BusinessError](t, err)
	assert.Contains(t, businessErr.Message, "Customer not found")

	_, err = f.service().CreateOrder(ctx, admin, f.customer.ID, []OrderLineInput{{PizzaID: 999, Quantity: 1}})
	businessErr = requireErrorAs[*models.BusinessError](t, err)
	assert.Equal(t, "Pizza not found: 999", businessErr.Message)

	_, err = f.service().CreateOrder(ctx, admin, f.customer.ID, []OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 0}})
	requireErrorAs[*models.ValidationError](t, err)

	_, err = f.service().CreateOrder(ctx, admin, f.customer.ID, nil)
	requireErrorAs[*models.ValidationError](t, err)
}

func TestCreateOrderForAnotherCustomerIsForbidden(t *testing.T) {
	f := newOrderFixture(t)
	other := seedCustomer(t, f.store, "other@example.com", models.RoleCustomer)

	_, err := f.service().CreateOrder(context.Background(), principalOf(other), f.customer.ID,
		[]OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	requireErrorAs[*models.ForbiddenError](t, err)
}

func TestCreateOrderDuplicatePizzaKeepsSeparateLines(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.service().CreateOrder(context.Background(), principalOf(f.customer), f.customer.ID, []OrderLineInput{
		{PizzaID: f.margherita.ID, Quantity: 1},
		{PizzaID: f.margherita.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Len(t, order.OrderLines, 2)
	assert.Equal(t, "25.50", order.TotalAmount.StringFixed(2))
}

func TestOrderNumberCollisionRetries(t *testing.T) {
	f := newOrderFixture(t)
	sequence := []string{"ORD-AAAAAAAA", "ORD-AAAAAAAA", "ORD-AAAAAAAA", "ORD-BBBBBBBB"}
	next := 0
	service := f.service(WithOrderNumberGenerator(func() string {
		number := sequence[next]
		next++
		return number
	}))

	first := f.placeOrder(t, service)
	second := f.placeOrder(t, service)

	assert.Equal(t, "ORD-AAAAAAAA", first.OrderNumber)
	assert.Equal(t, "ORD-BBBBBBBB", second.OrderNumber)
	assert.Equal(t, 4, next)
}

func TestOrderNumberCollisionGivesUp(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service(WithOrderNumberGenerator(func() string { return "ORD-CCCCCCCC" }))
	f.placeOrder(t, service)

	_, err := service.CreateOrder(context.Background(), principalOf(f.customer), f.customer.ID,
		[]OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	assert.ErrorContains(t, err, "unique order number")
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}

func TestUpdateStatusFollowsWorkflow(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service()
	order := f.placeOrder(t, service)
	ctx := context.Background()

	for _, status := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusDelivered,
	} {
		updated, err := service.UpdateStatus(ctx, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err := service.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	businessErr := requireErrorAs[*models.BusinessError](t, err)
	assert.Equal(t, "cannot change order status from DELIVERED to PENDING", businessErr.Message)

	_, err = service.UpdateStatus(ctx, 999, models.OrderStatusConfirmed)
	requireErrorAs[*models.NotFoundError](t, err)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.OrderEvent) bool {
		return e.Type == events.OrderStatusChanged &&
			e.PreviousStatus == models.OrderStatusReady &&
			e.Status == models.OrderStatusDelivered
	}))
}

func TestUpdateStatusSkippingStepsFails(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service()
	order := f.placeOrder(t, service)

	_, err := service.UpdateStatus(context.Background(), order.ID, models.OrderStatusDelivered)
	requireErrorAs[*models.BusinessError](t, err)

	reloaded, err := f.store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service()
	ctx := context.Background()

	order := f.placeOrder(t, service)
	cancelled, err := service.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))

	_, err = service.CancelOrder(ctx, order.ID)
	businessErr := requireErrorAs[*models.BusinessError](t, err)
	assert.Equal(t, "order is already cancelled", businessErr.Message)

	delivered := f.placeOrder(t, service)
	require.NoError(t, f.store.Orders().UpdateStatus(ctx, delivered.ID, models.OrderStatusDelivered))
	_, err = service.CancelOrder(ctx, delivered.ID)
	businessErr = requireErrorAs[*models.BusinessError](t, err)
	assert.Equal(t, "cannot cancel a delivered order", businessErr.Message)

	reloaded, err := f.store.Orders().FindByID(ctx, delivered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, reloaded.Status)

	_, err = service.CancelOrder(ctx, 999)
	requireErrorAs[*models.NotFoundError](t, err)
}

func TestCustomerOrdersHideCancelled(t *testing.T) {
	f := newOrderFixture(t)
	service := f.service()
	ctx := context.Background()
	principal := principalOf(f.customer)

	f.placeOrder(t, service)
	cancelled := f.placeOrder(t, service)
	_, err := service.CancelOrder(ctx, cancelled.ID)
	require.NoError(t, err)

	_, total, err := service.ListCustomerOrders(ctx, principal, f.customer.ID, false, repositories.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = service.ListCustomerOrders(ctx, principal, f.customer.ID, true, repositories.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	other := seedCustomer(t, f.store, "other@example.com", models.RoleCustomer)
	_, _, err = service.ListCustomerOrders(ctx, principalOf(other), f.customer.ID, false, repositories.PageRequest{})
	requireErrorAs[*models.ForbiddenError](t, err)

	_, err = service.GetOrder(ctx, principalOf(other), cancelled.ID)
	requireErrorAs[*models.ForbiddenError](t, err)
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture(t)
	failing := &mockPublisher{}
	failing.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	order, err := NewOrderService(f.store, failing).CreateOrder(context.Background(), principalOf(f.customer),
		f.customer.ID, []OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	failing.AssertNumberOfCalls(t, "Publish", 1)
}

func TestOrderEventsSurviveRequestCancellation(t *testing.T) {
	f := newOrderFixture(t)
	publisher := &mockPublisher{}
	publisher.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Done() == nil
	}), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := NewOrderService(f.store, publisher).CreateOrder(ctx, principalOf(f.customer),
		f.customer.ID, []OrderLineInput{{PizzaID: f.margherita.ID, Quantity: 1}})
	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNewOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewOrderNumber()
		assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, number)
		seen[number] = true
	}
	assert.Greater(t, len(seen), 95)
}
