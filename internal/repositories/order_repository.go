package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	CustomerID       *uint
	Status           *models.OrderStatus
	ExcludeCancelled bool
}

// OrderRepository provides access to orders and their lines
type OrderRepository interface {
	// Create inserts the order row and then its lines
	Create(ctx context.Context, order *models.Order) error
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
	// FindByID loads the order with customer, lines and line pizzas (including deleted pizzas)
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindAll(ctx context.Context, filter OrderFilter, page PageRequest) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
}

var orderSortColumns = map[string]string{
	"id":          "orders.id",
	"orderDate":   "orders.order_date",
	"totalAmount": "orders.total_amount",
	"status":      "orders.status",
}

func (f OrderFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CustomerID != nil {
		db = db.Where("orders.customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		db = db.Where("orders.status = ?", *f.Status)
	}
	if f.ExcludeCancelled {
		db = db.Where("orders.status <> ?", models.OrderStatusCancelled)
	}
	return db
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("OrderLines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_lines.id ASC")
		}).
		Preload("OrderLines.Pizza", func(tx *gorm.DB) *gorm.DB {
			return tx.Unscoped()
		})
}

type orderRepository struct {
	db *gorm.DB
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Customer", "OrderLines").Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.DuplicateError{Resource: "Order", Field: "orderNumber", Value: order.OrderNumber}
		}
		return fmt.Errorf("creating order: %w", err)
	}
	if len(order.OrderLines) == 0 {
		return nil
	}
	for i := range order.OrderLines {
		order.OrderLines[i].OrderID = order.ID
	}
	if err := db.Omit("Pizza").Create(&order.OrderLines).Error; err != nil {
		return fmt.Errorf("creating lines of order %s: %w", order.OrderNumber, err)
	}
	return nil
}

func (r *orderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", orderNumber).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking order number: %w", err)
	}
	return count > 0, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Scopes(withLines).First(&order, id).Error; err != nil {
		return nil, notFound(err, "Order", id)
	}
	return &order, nil
}

func (r *orderRepository) FindAll(ctx context.Context, filter OrderFilter, page PageRequest) ([]models.Order, int64, error) {
	page = page.Normalize()
	order, err := page.orderClause(orderSortColumns, "orders.order_date DESC")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	var orders []models.Order
	err = r.db.WithContext(ctx).
		Scopes(filter.apply, withLines).
		Order(order).
		Order("orders.id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("updating status of order %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "Order", ID: id}
	}
	return nil
}
