package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// LoginResult is a successful authentication
type LoginResult struct {
	Customer  *models.Customer
	Token     string
	ExpiresAt time.Time
}

// CustomerService manages customer accounts, login and favorites
type CustomerService interface {
	// Register creates a CUSTOMER account. The email must be unused.
	Register(ctx context.Context, customer *models.Customer, password string) (*models.Customer, error)
	// Login checks the credentials and issues an access token
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetCustomer(ctx context.Context, principal Principal, id uint) (*models.Customer, error)
	// ListCustomers returns every customer to admins and only the caller to customers
	ListCustomers(ctx context.Context, principal Principal, page repositories.PageRequest) ([]models.Customer, int64, error)
	Favorites(ctx context.Context, principal Principal, customerID uint) ([]models.Pizza, error)
	AddFavorite(ctx context.Context, principal Principal, customerID, pizzaID uint) ([]models.Pizza, error)
	RemoveFavorite(ctx context.Context, principal Principal, customerID, pizzaID uint) ([]models.Pizza, error)
}

type customerService struct {
	store  *repositories.Store
	tokens TokenService
}

func NewCustomerService(store *repositories.Store, tokens TokenService) CustomerService {
	return &customerService{store: store, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *customerService) Register(ctx context.Context, customer *models.Customer, password string) (*models.Customer, error) {
	customer.Email = normalizeEmail(customer.Email)
	customer.Role = models.RoleCustomer

	exists, err := s.store.Customers().ExistsByEmail(ctx, customer.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &models.DuplicateError{Resource: "Customer", Field: "email", Value: customer.Email}
	}

	if err := customer.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	// the unique index still catches a concurrent registration
	if err := s.store.Customers().Create(ctx, customer); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"customer_id": customer.ID, "email": customer.Email}).Info("Customer registered")
	return customer, nil
}

func (s *customerService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	customer, err := s.store.Customers().FindByEmail(ctx, normalizeEmail(email))
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) || (err == nil && !customer.CheckPassword(password)) {
		log.WithField("email", email).Warn("Failed login attempt")
		return nil, &models.UnauthenticatedError{Message: "invalid email or password"}
	}
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(customer)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Customer: customer, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, principal Principal, id uint) (*models.Customer, error) {
	if err := principal.authorizeCustomer(id); err != nil {
		return nil, err
	}
	return s.store.Customers().FindByID(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, principal Principal, page repositories.PageRequest) ([]models.Customer, int64, error) {
	if principal.IsAdmin() {
		return s.store.Customers().FindAll(ctx, page)
	}
	self, err := s.store.Customers().FindByID(ctx, principal.CustomerID)
	if err != nil {
		return nil, 0, err
	}
	return []models.Customer{*self}, 1, nil
}

func (s *customerService) Favorites(ctx context.Context, principal Principal, customerID uint) ([]models.Pizza, error) {
	if _, err := s.GetCustomer(ctx, principal, customerID); err != nil {
		return nil, err
	}
	return s.store.Customers().Favorites(ctx, customerID)
}

func (s *customerService) AddFavorite(ctx context.Context, principal Principal, customerID, pizzaID uint) ([]models.Pizza, error) {
	customer, pizza, err := s.customerAndPizza(ctx, principal, customerID, pizzaID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Customers().AddFavorite(ctx, customer, pizza); err != nil {
		return nil, err
	}
	return s.store.Customers().Favorites(ctx, customerID)
}

func (s *customerService) RemoveFavorite(ctx context.Context, principal Principal, customerID, pizzaID uint) ([]models.Pizza, error) {
	customer, pizza, err := s.customerAndPizza(ctx, principal, customerID, pizzaID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Customers().RemoveFavorite(ctx, customer, pizza); err != nil {
		return nil, err
	}
	return s.store.Customers().Favorites(ctx, customerID)
}

func (s *customerService) customerAndPizza(ctx context.Context, principal Principal, customerID, pizzaID uint) (*models.Customer, *models.Pizza, error) {
	customer, err := s.GetCustomer(ctx, principal, customerID)
	if err != nil {
		return nil, nil, err
	}
	pizza, err := s.store.Pizzas().FindByID(ctx, pizzaID)
	if err != nil {
		return nil, nil, err
	}
	return customer, pizza, nil
}
