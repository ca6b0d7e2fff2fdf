package services

import (
	"context"
	"errors"
	"testing"

	"github.com/franciscosanchezn/pizzastore-api/internal/database"
	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func seedPizza(t *testing.T, store *repositories.Store, name, price string, available bool) *models.Pizza {
	t.Helper()
	pizza := &models.Pizza{Name: name, Price: decimal.RequireFromString(price), Available: available}
	require.NoError(t, store.Pizzas().Create(context.Background(), pizza))
	return pizza
}

func seedCustomer(t *testing.T, store *repositories.Store, email string, role models.Role) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: "Test Customer", Email: email, Role: role}
	require.NoError(t, customer.SetPassword("password123"))
	require.NoError(t, store.Customers().Create(context.Background(), customer))
	return customer
}

func principalOf(c *models.Customer) Principal {
	return Principal{CustomerID: c.ID, Email: c.Email, Role: c.Role}
}

func requireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T, got %v", target, err)
	return target
}
