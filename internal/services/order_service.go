package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// maxOrderNumberAttempts bounds regeneration on order number collisions
const maxOrderNumberAttempts = 5

// OrderLineInput is one requested pizza and quantity
type OrderLineInput struct {
	PizzaID  uint
	Quantity int
}

// OrderNumberGenerator returns a candidate order number
type OrderNumberGenerator func() string

// NewOrderNumber returns "ORD-" followed by 8 upper-case hex digits
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// OrderService runs the order workflow: creation, status changes and cancellation
type OrderService interface {
	// CreateOrder prices the lines from the current pizza prices and stores the
	// order as PENDING. Customers may only order for themselves.
	CreateOrder(ctx context.Context, principal Principal, customerID uint, lines []OrderLineInput) (*models.Order, error)
	GetOrder(ctx context.Context, principal Principal, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter repositories.OrderFilter, page repositories.PageRequest) ([]models.Order, int64, error)
	// ListCustomerOrders hides cancelled orders unless includeCancelled is set
	ListCustomerOrders(ctx context.Context, principal Principal, customerID uint, includeCancelled bool, page repositories.PageRequest) ([]models.Order, int64, error)
	// UpdateStatus moves the order along the status workflow
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error)
	// CancelOrder marks the order CANCELLED. The row is kept.
	CancelOrder(ctx context.Context, id uint) (*models.Order, error)
}

type orderService struct {
	store     *repositories.Store
	publisher events.Publisher
	numbers   OrderNumberGenerator
	now       func() time.Time
}

// OrderServiceOption customizes the order service
type OrderServiceOption func(*orderService)

// WithOrderNumberGenerator replaces the random order number source
func WithOrderNumberGenerator(gen OrderNumberGenerator) OrderServiceOption {
	return func(s *orderService) {
		s.numbers = gen
	}
}

func NewOrderService(store *repositories.Store, publisher events.Publisher, opts ...OrderServiceOption) OrderService {
	s := &orderService{
		store:     store,
		publisher: publisher,
		numbers:   NewOrderNumber,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, principal Principal, customerID uint, lines []OrderLineInput) (*models.Order, error) {
	if !principal.IsAdmin() && principal.CustomerID != customerID {
		return nil, &models.ForbiddenError{Message: "customers can only place orders for themselves"}
	}
	if len(lines) == 0 {
		return nil, models.NewValidationError("orderLines", "must contain at least 1 item(s)")
	}
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, models.NewValidationError(fmt.Sprintf("orderLines[%d].quantity", i), "must be greater than or equal to 1")
		}
	}

	order := &models.Order{
		CustomerID: customerID,
		Status:     models.OrderStatusPending,
		OrderDate:  s.now().UTC(),
	}

	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			if isNotFound(err) {
				return models.NewBusinessError("Customer not found with id: %d", customerID)
			}
			return err
		}

		for _, line := range lines {
			pizza, err := tx.Pizzas().FindByID(ctx, line.PizzaID)
			if err != nil {
				if isNotFound(err) {
					return models.NewBusinessError("Pizza not found: %d", line.PizzaID)
				}
				return err
			}
			if !pizza.Available {
				return models.NewBusinessError("Pizza '%s' is not available", pizza.Name)
			}
			order.AddLine(*pizza, line.Quantity)
		}

		number, err := s.uniqueOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.store.Orders().FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"order_number": created.OrderNumber,
		"customer_id":  created.CustomerID,
		"total":        created.TotalAmount.StringFixed(2),
	}).Info("Order created")
	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, created, ""))
	return created, nil
}

// uniqueOrderNumber draws numbers until one is unused. The unique index guards the remaining race.
func (s *orderService) uniqueOrderNumber(ctx context.Context, tx *repositories.Store) (string, error) {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		number := s.numbers()
		exists, err := tx.Orders().ExistsByOrderNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		log.WithFields(log.Fields{"order_number": number, "attempt": attempt}).Warn("Order number collision")
	}
	return "", fmt.Errorf("could not generate a unique order number after %d attempts", maxOrderNumberAttempts)
}

func (s *orderService) GetOrder(ctx context.Context, principal Principal, id uint) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := principal.authorizeCustomer(order.CustomerID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repositories.OrderFilter, page repositories.PageRequest) ([]models.Order, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, models.NewValidationError("status", "must be one of PENDING, CONFIRMED, PREPARING, READY, DELIVERED, CANCELLED")
	}
	return s.store.Orders().FindAll(ctx, filter, page)
}

func (s *orderService) ListCustomerOrders(ctx context.Context, principal Principal, customerID uint, includeCancelled bool, page repositories.PageRequest) ([]models.Order, int64, error) {
	if err := principal.authorizeCustomer(customerID); err != nil {
		return nil, 0, err
	}
	if _, err := s.store.Customers().FindByID(ctx, customerID); err != nil {
		return nil, 0, err
	}
	filter := repositories.OrderFilter{CustomerID: &customerID, ExcludeCancelled: !includeCancelled}
	return s.store.Orders().FindAll(ctx, filter, page)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of PENDING, CONFIRMED, PREPARING, READY, DELIVERED, CANCELLED")
	}
	return s.transition(ctx, id, func(current models.OrderStatus) error {
		if !current.CanTransitionTo(status) {
			return models.NewBusinessError("cannot change order status from %s to %s", current, status)
		}
		return nil
	}, status)
}

func (s *orderService) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, func(current models.OrderStatus) error {
		switch current {
		case models.OrderStatusDelivered:
			return models.NewBusinessError("cannot cancel a delivered order")
		case models.OrderStatusCancelled:
			return models.NewBusinessError("order is already cancelled")
		}
		return nil
	}, models.OrderStatusCancelled)
}

// transition loads the order, lets check veto the change and stores the new status
func (s *orderService) transition(ctx context.Context, id uint, check func(models.OrderStatus) error, next models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	var previous models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		if err := check(previous); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.OrderStatusChanged
	if next == models.OrderStatusCancelled {
		eventType = events.OrderCancelled
	}
	log.WithFields(log.Fields{
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           next,
	}).Info("Order status changed")
	s.publish(ctx, events.NewOrderEvent(eventType, order, previous))
	return order, nil
}

// publish never fails the request; the order is already committed, so the
// event outlives a client that disconnects after the commit
func (s *orderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event":        event.Type,
			"order_number": event.OrderNumber,
		}).Error("Failed to publish order event")
	}
}

func isNotFound(err error) bool {
	var notFound *models.NotFoundError
	return errors.As(err, &notFound)
}
