package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusCancelled},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal step
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer order. It exclusively owns its lines.
type Order struct {
	ID          uint            `gorm:"primaryKey"`
	OrderNumber string          `gorm:"size:32;uniqueIndex;not null"`
	CustomerID  uint            `gorm:"not null;index"`
	Customer    Customer        `gorm:"constraint:OnDelete:RESTRICT"`
	OrderLines  []OrderLine     `gorm:"constraint:OnDelete:CASCADE"`
	Status      OrderStatus     `gorm:"size:20;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OrderDate   time.Time       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AddLine appends a line priced from the pizza's current price and refreshes the total
func (o *Order) AddLine(pizza Pizza, quantity int) {
	line := OrderLine{PizzaID: pizza.ID}
	line.SetUnitPrice(pizza.Price)
	line.SetQuantity(quantity)
	o.OrderLines = append(o.OrderLines, line)
	o.RecalculateTotal()
}

// RecalculateTotal sets TotalAmount to the sum of the line subtotals
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, line := range o.OrderLines {
		total = total.Add(line.Subtotal)
	}
	o.TotalAmount = total
}

// OrderLine is one pizza and quantity within an order.
// UnitPrice is a snapshot of the pizza price when the order was placed.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	PizzaID   uint            `gorm:"not null;index"`
	Pizza     Pizza           `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// SetQuantity updates the quantity and the subtotal
func (l *OrderLine) SetQuantity(quantity int) {
	l.Quantity = quantity
	l.recalculate()
}

// SetUnitPrice updates the unit price and the subtotal
func (l *OrderLine) SetUnitPrice(price decimal.Decimal) {
	l.UnitPrice = price
	l.recalculate()
}

func (l *OrderLine) recalculate() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// BeforeSave keeps subtotal consistent with price and quantity at write time
func (l *OrderLine) BeforeSave(tx *gorm.DB) error {
	l.recalculate()
	return nil
}
