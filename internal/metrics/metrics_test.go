package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Instrument())
	router.GET("/api/pizzas/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/pizzas/:id", "204"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pizzas/42", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/pizzas/:id", "204")))
}

func TestOrderRecorder(t *testing.T) {
	order := &models.Order{ID: 1, OrderNumber: "ORD-00000001", Status: models.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("26.50")}
	created := testutil.ToFloat64(ordersCreated)
	ready := testutil.ToFloat64(orderStatusChanges.WithLabelValues("READY"))

	recorder := OrderRecorder{}
	require.NoError(t, recorder.Publish(context.Background(), events.NewOrderEvent(events.OrderCreated, order, "")))
	order.Status = models.OrderStatusReady
	require.NoError(t, recorder.Publish(context.Background(), events.NewOrderEvent(events.OrderStatusChanged, order, models.OrderStatusPreparing)))

	assert.Equal(t, created+1, testutil.ToFloat64(ordersCreated))
	assert.Equal(t, ready+1, testutil.ToFloat64(orderStatusChanges.WithLabelValues("READY")))
}

func TestHandlerServesRegistry(t *testing.T) {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pizzastore_orders_created_total")
}
