package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CustomerController exposes customer profiles, their orders and favorite pizzas
type CustomerController struct {
	customers services.CustomerService
	orders    services.OrderService
}

func NewCustomerController(customers services.CustomerService, orders services.OrderService) *CustomerController {
	return &CustomerController{customers: customers, orders: orders}
}

// ListCustomers godoc
// @Summary List customers
// @Description Admins get every customer, customers only themselves
// @Tags customers
// @Produce json
// @Param page query int false "Page number, starting at 0"
// @Param size query int false "Page size"
// @Param sort query string false "Sort field and direction, e.g. name,asc"
// @Success 200 {object} dto.PageResponse[dto.CustomerResponse]
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers [get]
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, err := dto.ParsePageRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	customers, total, err := cc.customers.ListCustomers(c.Request.Context(), caller, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(dto.ToCustomerResponses(customers), page, total))
}

// GetCustomer godoc
// @Summary Get customer by ID
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers/{id} [get]
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	customer, err := cc.customers.GetCustomer(c.Request.Context(), caller, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// GetCustomerOrders godoc
// @Summary List the orders of a customer
// @Description Cancelled orders are hidden unless includeCancelled is true
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Param includeCancelled query bool false "Include cancelled orders"
// @Param page query int false "Page number, starting at 0"
// @Param size query int false "Page size"
// @Success 200 {object} dto.PageResponse[dto.OrderResponse]
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers/{id}/orders [get]
func (cc *CustomerController) GetCustomerOrders(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	includeCancelled, err := queryBool(c, "includeCancelled")
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, err := dto.ParsePageRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	orders, total, err := cc.orders.ListCustomerOrders(c.Request.Context(), caller, id,
		includeCancelled != nil && *includeCancelled, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(dto.ToOrderResponses(orders), page, total))
}

// GetFavorites godoc
// @Summary List favorite pizzas
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {array} dto.PizzaResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers/{id}/favorites [get]
func (cc *CustomerController) GetFavorites(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	pizzas, err := cc.customers.Favorites(c.Request.Context(), caller, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPizzaResponses(pizzas))
}

// AddFavorite godoc
// @Summary Add a favorite pizza
// @Description Adding a pizza twice has no effect
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Param pizzaId path int true "Pizza ID"
// @Success 200 {array} dto.PizzaResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers/{id}/favorites/{pizzaId} [post]
func (cc *CustomerController) AddFavorite(c *gin.Context) {
	cc.changeFavorite(c, cc.customers.AddFavorite)
}

// RemoveFavorite godoc
// @Summary Remove a favorite pizza
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Param pizzaId path int true "Pizza ID"
// @Success 200 {array} dto.PizzaResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/customers/{id}/favorites/{pizzaId} [delete]
func (cc *CustomerController) RemoveFavorite(c *gin.Context) {
	cc.changeFavorite(c, cc.customers.RemoveFavorite)
}

type favoriteChange func(ctx context.Context, principal services.Principal, customerID, pizzaID uint) ([]models.Pizza, error)

func (cc *CustomerController) changeFavorite(c *gin.Context, change favoriteChange) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	pizzaID, err := pathID(c, "pizzaId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	pizzas, err := change(c.Request.Context(), caller, id, pizzaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPizzaResponses(pizzas))
}
