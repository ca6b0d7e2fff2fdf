package dto

import (
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/shopspring/decimal"
)

// PizzaResponse is the API representation of a pizza
type PizzaResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	Price           decimal.Decimal          `json:"price" swaggertype:"number"`
	ImageURL        string                   `json:"imageUrl,omitempty"`
	Available       bool                     `json:"available"`
	NutritionalInfo *NutritionalInfoResponse `json:"nutritionalInfo,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type NutritionalInfoResponse struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// CustomerResponse never carries the password hash
type CustomerResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderResponse is the API representation of an order with its lines
type OrderResponse struct {
	ID           uint                `json:"id"`
	OrderNumber  string              `json:"orderNumber"`
	CustomerID   uint                `json:"customerId"`
	CustomerName string              `json:"customerName,omitempty"`
	Status       models.OrderStatus  `json:"status"`
	TotalAmount  decimal.Decimal     `json:"totalAmount" swaggertype:"number"`
	OrderDate    time.Time           `json:"orderDate"`
	OrderLines   []OrderLineResponse `json:"orderLines"`
}

type OrderLineResponse struct {
	ID        uint            `json:"id"`
	PizzaID   uint            `json:"pizzaId"`
	PizzaName string          `json:"pizzaName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"number"`
	Subtotal  decimal.Decimal `json:"subtotal" swaggertype:"number"`
}

// LoginResponse carries the bearer token issued on login
type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	TokenType   string           `json:"tokenType"`
	ExpiresIn   int64            `json:"expiresIn"`
	Customer    CustomerResponse `json:"customer"`
}

// ClientResponse describes an OAuth2 client. Secret is only set on creation.
type ClientResponse struct {
	ClientID   string    `json:"clientId"`
	Secret     string    `json:"clientSecret,omitempty"`
	Name       string    `json:"name"`
	Domain     string    `json:"domain,omitempty"`
	Scopes     string    `json:"scopes,omitempty"`
	CustomerID uint      `json:"customerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func ToPizzaResponse(p *models.Pizza) PizzaResponse {
	resp := PizzaResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if n := p.NutritionalInfo; n != nil {
		resp.NutritionalInfo = &NutritionalInfoResponse{
			Calories: n.Calories,
			Protein:  n.Protein,
			Carbs:    n.Carbs,
			Fat:      n.Fat,
		}
	}
	return resp
}

func ToPizzaResponses(pizzas []models.Pizza) []PizzaResponse {
	out := make([]PizzaResponse, 0, len(pizzas))
	for i := range pizzas {
		out = append(out, ToPizzaResponse(&pizzas[i]))
	}
	return out
}

// ToPizzaModel builds an entity from a validated request. Available defaults to true.
func ToPizzaModel(req *PizzaRequest) *models.Pizza {
	pizza := &models.Pizza{Available: true}
	ApplyPizzaRequest(pizza, req)
	return pizza
}

// ApplyPizzaRequest copies request fields onto an existing pizza. An omitted
// available flag or image URL keeps the stored value. The nutritional info is
// replaced, or removed when the request omits it.
func ApplyPizzaRequest(pizza *models.Pizza, req *PizzaRequest) {
	pizza.Name = req.Name
	pizza.Description = req.Description
	if req.ImageURL != "" {
		pizza.ImageURL = req.ImageURL
	}
	if req.Price != nil {
		pizza.Price = req.Price.Round(2)
	}
	if req.Available != nil {
		pizza.Available = *req.Available
	}
	pizza.NutritionalInfo = nil
	if n := req.NutritionalInfo; n != nil {
		pizza.NutritionalInfo = &models.NutritionalInfo{
			Calories: n.Calories,
			Protein:  n.Protein,
			Carbs:    n.Carbs,
			Fat:      n.Fat,
		}
	}
}

func ToCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}

func ToCustomerResponses(customers []models.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i]))
	}
	return out
}

// ToCustomerModel builds an unsaved customer; the password is set by the service
func ToCustomerModel(req *RegisterRequest) *models.Customer {
	return &models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Role:    models.RoleCustomer,
	}
}

func ToOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		CustomerName: o.Customer.Name,
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		OrderDate:    o.OrderDate,
		OrderLines:   make([]OrderLineResponse, 0, len(o.OrderLines)),
	}
	for _, line := range o.OrderLines {
		resp.OrderLines = append(resp.OrderLines, OrderLineResponse{
			ID:        line.ID,
			PizzaID:   line.PizzaID,
			PizzaName: line.Pizza.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return resp
}

func ToOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}

func ToClientResponse(c *models.OAuthClient) ClientResponse {
	return ClientResponse{
		ClientID:   c.ID,
		Name:       c.Name,
		Domain:     c.Domain,
		Scopes:     c.Scopes,
		CustomerID: c.CustomerID,
		CreatedAt:  c.CreatedAt,
	}
}
