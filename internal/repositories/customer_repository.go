package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"gorm.io/gorm"
)

// CustomerRepository provides access to customer accounts and their favorites
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, page PageRequest) ([]models.Customer, int64, error)
	Favorites(ctx context.Context, customerID uint) ([]models.Pizza, error)
	AddFavorite(ctx context.Context, customer *models.Customer, pizza *models.Pizza) error
	RemoveFavorite(ctx context.Context, customer *models.Customer, pizza *models.Pizza) error
}

var customerSortColumns = map[string]string{
	"id":        "customers.id",
	"name":      "customers.name",
	"email":     "customers.email",
	"createdAt": "customers.created_at",
}

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Omit("FavoritePizzas", "Orders").Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.DuplicateError{Resource: "Customer", Field: "email", Value: customer.Email}
		}
		return fmt.Errorf("creating customer: %w", err)
	}
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFound(err, "Customer", id)
	}
	return &customer, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, notFound(err, "Customer", email)
	}
	return &customer, nil
}

func (r *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking customer email: %w", err)
	}
	return count > 0, nil
}

func (r *customerRepository) FindAll(ctx context.Context, page PageRequest) ([]models.Customer, int64, error) {
	page = page.Normalize()
	order, err := page.orderClause(customerSortColumns, "customers.id ASC")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	var customers []models.Customer
	err = r.db.WithContext(ctx).Order(order).Offset(page.Offset()).Limit(page.Size).Find(&customers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing customers: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepository) Favorites(ctx context.Context, customerID uint) ([]models.Pizza, error) {
	var pizzas []models.Pizza
	err := r.db.WithContext(ctx).
		Model(&models.Customer{ID: customerID}).
		Order("pizzas.name ASC").
		Association("FavoritePizzas").
		Find(&pizzas)
	if err != nil {
		return nil, fmt.Errorf("loading favorites of customer %d: %w", customerID, err)
	}
	return pizzas, nil
}

func (r *customerRepository) AddFavorite(ctx context.Context, customer *models.Customer, pizza *models.Pizza) error {
	if err := r.db.WithContext(ctx).Model(customer).Association("FavoritePizzas").Append(pizza); err != nil {
		return fmt.Errorf("adding favorite %d to customer %d: %w", pizza.ID, customer.ID, err)
	}
	return nil
}

func (r *customerRepository) RemoveFavorite(ctx context.Context, customer *models.Customer, pizza *models.Pizza) error {
	if err := r.db.WithContext(ctx).Model(customer).Association("FavoritePizzas").Delete(pizza); err != nil {
		return fmt.Errorf("removing favorite %d from customer %d: %w", pizza.ID, customer.ID, err)
	}
	return nil
}
