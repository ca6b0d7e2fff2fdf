// Package events carries order lifecycle notifications to subscribers outside
// the request path: a RabbitMQ exchange and the websocket live feed.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/shopspring/decimal"
)

// Type is the routing key of an order event
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderCancelled     Type = "order.cancelled"
)

// OrderEvent is the payload published for every order change
type OrderEvent struct {
	Type           Type               `json:"type"`
	OrderID        uint               `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	CustomerID     uint               `json:"customerId"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// NewOrderEvent snapshots an order. previous is empty for creations.
func NewOrderEvent(eventType Type, order *models.Order, previous models.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CustomerID:     order.CustomerID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		OccurredAt:     time.Now().UTC(),
	}
}

// Publisher delivers order events
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
