package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// PizzaFilter narrows pizza listings. Nil fields are ignored.
type PizzaFilter struct {
	Name      string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Available *bool
}

// PizzaRepository provides access to the pizza catalog
type PizzaRepository interface {
	// FindAll returns one page of pizzas matching the filter and the total match count
	FindAll(ctx context.Context, filter PizzaFilter, page PageRequest) ([]models.Pizza, int64, error)
	// FindByID returns a live (not deleted) pizza
	FindByID(ctx context.Context, id uint) (*models.Pizza, error)
	Create(ctx context.Context, pizza *models.Pizza) error
	// Update saves the pizza and replaces its nutritional info
	Update(ctx context.Context, pizza *models.Pizza) error
	// Delete soft deletes the pizza
	Delete(ctx context.Context, id uint) error
	UpdateImageURL(ctx context.Context, id uint, imageURL string) error
}

var pizzaSortColumns = map[string]string{
	"id":        "pizzas.id",
	"name":      "pizzas.name",
	"price":     "pizzas.price",
	"createdAt": "pizzas.created_at",
}

func (f PizzaFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Name != "" {
		db = db.Where(`LOWER(pizzas.name) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(f.Name)+"%")
	}
	if f.MinPrice != nil {
		db = db.Where("pizzas.price >= ?", f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		db = db.Where("pizzas.price <= ?", f.MaxPrice.InexactFloat64())
	}
	if f.Available != nil {
		db = db.Where("pizzas.available = ?", *f.Available)
	}
	return db
}

type pizzaRepository struct {
	db *gorm.DB
}

func (r *pizzaRepository) FindAll(ctx context.Context, filter PizzaFilter, page PageRequest) ([]models.Pizza, int64, error) {
	page = page.Normalize()
	order, err := page.orderClause(pizzaSortColumns, "pizzas.id ASC")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Pizza{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting pizzas: %w", err)
	}

	var pizzas []models.Pizza
	err = r.db.WithContext(ctx).
		Scopes(filter.apply).
		Preload("NutritionalInfo").
		Order(order).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&pizzas).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing pizzas: %w", err)
	}
	return pizzas, total, nil
}

func (r *pizzaRepository) FindByID(ctx context.Context, id uint) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.WithContext(ctx).Preload("NutritionalInfo").First(&pizza, id).Error; err != nil {
		return nil, notFound(err, "Pizza", id)
	}
	return &pizza, nil
}

func (r *pizzaRepository) Create(ctx context.Context, pizza *models.Pizza) error {
	if err := r.db.WithContext(ctx).Create(pizza).Error; err != nil {
		return fmt.Errorf("creating pizza: %w", err)
	}
	return nil
}

func (r *pizzaRepository) Update(ctx context.Context, pizza *models.Pizza) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("NutritionalInfo", "CreatedAt").Save(pizza).Error; err != nil {
			return fmt.Errorf("updating pizza %d: %w", pizza.ID, err)
		}
		if err := tx.Where("pizza_id = ?", pizza.ID).Delete(&models.NutritionalInfo{}).Error; err != nil {
			return fmt.Errorf("clearing nutritional info of pizza %d: %w", pizza.ID, err)
		}
		if pizza.NutritionalInfo != nil {
			pizza.NutritionalInfo.ID = 0
			pizza.NutritionalInfo.PizzaID = pizza.ID
			if err := tx.Create(pizza.NutritionalInfo).Error; err != nil {
				return fmt.Errorf("saving nutritional info of pizza %d: %w", pizza.ID, err)
			}
		}
		return nil
	})
}

func (r *pizzaRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Pizza{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting pizza %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "Pizza", ID: id}
	}
	return nil
}

func (r *pizzaRepository) UpdateImageURL(ctx context.Context, id uint, imageURL string) error {
	result := r.db.WithContext(ctx).Model(&models.Pizza{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return fmt.Errorf("updating image of pizza %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "Pizza", ID: id}
	}
	return nil
}
