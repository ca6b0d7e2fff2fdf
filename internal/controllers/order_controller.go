package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// OrderController handles order placement and the kitchen workflow
type OrderController struct {
	orders   services.OrderService
	hub      *events.Hub
	upgrader websocket.Upgrader
}

func NewOrderController(orders services.OrderService, hub *events.Hub) *OrderController {
	return &OrderController{
		orders: orders,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ListOrders godoc
// @Summary List orders
// @Tags orders
// @Produce json
// @Param customerId query int false "Filter by customer"
// @Param status query string false "Filter by status" Enums(PENDING, CONFIRMED, PREPARING, READY, DELIVERED, CANCELLED)
// @Param page query int false "Page number, starting at 0"
// @Param size query int false "Page size"
// @Param sort query string false "Sort field and direction, e.g. orderDate,desc"
// @Success 200 {object} dto.PageResponse[dto.OrderResponse]
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders [get]
func (oc *OrderController) ListOrders(c *gin.Context) {
	page, err := dto.ParsePageRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var filter repositories.OrderFilter
	if filter.CustomerID, err = queryID(c, "customerId"); err != nil {
		_ = c.Error(err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filter.Status = &status
	}

	orders, total, err := oc.orders.ListOrders(c.Request.Context(), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(dto.ToOrderResponses(orders), page, total))
}

// GetOrder godoc
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
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

	order, err := oc.orders.GetOrder(c.Request.Context(), caller, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// CreateOrder godoc
// @Summary Place an order
// @Description Prices every line from the current pizza price. All pizzas must exist and be available.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateOrderRequest
	if err := dto.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	lines := make([]services.OrderLineInput, 0, len(req.OrderLines))
	for _, line := range req.OrderLines {
		lines = append(lines, services.OrderLineInput{PizzaID: line.PizzaID, Quantity: line.Quantity})
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), caller, req.CustomerID, lines)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Location", "/api/orders/"+uintToString(order.ID))
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// UpdateStatus godoc
// @Summary Change the status of an order
// @Description PENDING > CONFIRMED > PREPARING > READY > DELIVERED, or CANCELLED before delivery
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body dto.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders/{id}/status [patch]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := dto.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// CancelOrder godoc
// @Summary Cancel an order
// @Description Marks the order CANCELLED. Delivered or already cancelled orders are rejected.
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders/{id} [delete]
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := oc.orders.CancelOrder(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Live godoc
// @Summary Live order feed
// @Description Websocket stream of order events. Browsers may pass the token as access_token.
// @Tags orders
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/orders/live [get]
func (oc *OrderController) Live(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := oc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	oc.hub.Register(conn, caller.Email)
	defer oc.hub.Unregister(conn)

	// the feed is one way; reading only detects the close
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
