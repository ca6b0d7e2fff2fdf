package dto

import (
	"regexp"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/shopspring/decimal"
)

var (
	maxPizzaPrice = decimal.NewFromInt(1000)
	phonePattern  = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

// PizzaRequest is the body of pizza create and update
type PizzaRequest struct {
	Name            string                  `json:"name" binding:"required,min=2,max=100"`
	Description     string                  `json:"description" binding:"max=500"`
	Price           *decimal.Decimal        `json:"price" binding:"required"`
	ImageURL        string                  `json:"imageUrl" binding:"omitempty,url,max=255"`
	Available       *bool                   `json:"available"`
	NutritionalInfo *NutritionalInfoRequest `json:"nutritionalInfo"`
}

// NutritionalInfoRequest is the optional nutrition block of a pizza
type NutritionalInfoRequest struct {
	Calories int     `json:"calories" binding:"gte=0,max=10000"`
	Protein  float64 `json:"protein" binding:"gte=0"`
	Carbs    float64 `json:"carbs" binding:"gte=0"`
	Fat      float64 `json:"fat" binding:"gte=0"`
}

// Validate checks the price rules
func (r *PizzaRequest) Validate() []models.FieldError {
	var fields []models.FieldError
	if r.Price != nil {
		switch {
		case !r.Price.IsPositive():
			fields = append(fields, models.FieldError{Field: "price", Message: "must be greater than 0"})
		case r.Price.GreaterThan(maxPizzaPrice):
			fields = append(fields, models.FieldError{Field: "price", Message: "must be less than or equal to 1000"})
		case !r.Price.Equal(r.Price.Round(2)):
			fields = append(fields, models.FieldError{Field: "price", Message: "must have at most 2 decimal places"})
		}
	}
	return fields
}

// RegisterRequest is the body of customer registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=150"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"max=20"`
	Address  string `json:"address" binding:"max=255"`
}

// Validate checks the phone format
func (r *RegisterRequest) Validate() []models.FieldError {
	if r.Phone != "" && !phonePattern.MatchString(r.Phone) {
		return []models.FieldError{{Field: "phone", Message: "must be a valid phone number"}}
	}
	return nil
}

// LoginRequest is the body of login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateOrderRequest is the body of order creation
type CreateOrderRequest struct {
	CustomerID uint               `json:"customerId" binding:"required,gt=0"`
	OrderLines []OrderLineRequest `json:"orderLines" binding:"required,min=1,dive"`
}

// OrderLineRequest is one requested pizza and quantity
type OrderLineRequest struct {
	PizzaID  uint `json:"pizzaId" binding:"required,gt=0"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=100"`
}

// UpdateOrderStatusRequest is the body of the status change endpoint
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,orderstatus"`
}

// CreateClientRequest is the body of OAuth2 client creation.
// CustomerID defaults to the calling admin.
type CreateClientRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Domain     string `json:"domain" binding:"omitempty,url,max=255"`
	Scopes     string `json:"scopes" binding:"max=255"`
	CustomerID uint   `json:"customerId" binding:"omitempty,gt=0"`
}
