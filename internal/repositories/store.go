package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Page*Size far from int overflow
	MaxPage = 1_000_000
)

// PageRequest describes a zero-based page and an optional sort key
type PageRequest struct {
	Page int
	Size int
	Sort string // API field name, resolved through a per-repository whitelist
	Desc bool
}

// Normalize clamps page and size into their valid ranges
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before the page
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// orderClause resolves the sort key against the allowed columns, falling back to fallback
func (p PageRequest) orderClause(columns map[string]string, fallback string) (string, error) {
	if p.Sort == "" {
		return fallback, nil
	}
	column, ok := columns[p.Sort]
	if !ok {
		allowed := make([]string, 0, len(columns))
		for key := range columns {
			allowed = append(allowed, key)
		}
		return "", models.NewValidationError("sort", fmt.Sprintf("unsupported sort field %q (allowed: %s)", p.Sort, strings.Join(allowed, ", ")))
	}
	if p.Desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}

// Store groups the repositories over one gorm handle. A Store obtained inside
// Transaction shares that transaction across all of its repositories.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store over the given database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Pizzas returns the pizza repository bound to this store
func (s *Store) Pizzas() PizzaRepository {
	return &pizzaRepository{db: s.db}
}

// Customers returns the customer repository bound to this store
func (s *Store) Customers() CustomerRepository {
	return &customerRepository{db: s.db}
}

// Orders returns the order repository bound to this store
func (s *Store) Orders() OrderRepository {
	return &orderRepository{db: s.db}
}

// Transaction runs fn inside a database transaction. Returning an error rolls back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound converts gorm's record-not-found into the domain error
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{Resource: resource, ID: id}
	}
	return err
}
