package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target, body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
	fields := make(map[string]string, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		fields[f.Field] = f.Message
	}
	return fields
}

func TestBindJSONPizzaRequest(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		wantFields  []string
		wantSuccess bool
	}{
		{"valid", `{"name":"Margherita","price":8.5}`, nil, true},
		{"missing price", `{"name":"Margherita"}`, []string{"price"}, false},
		{"short name", `{"name":"M","price":8.5}`, []string{"name"}, false},
		{"zero price", `{"name":"Margherita","price":0}`, []string{"price"}, false},
		{"negative price", `{"name":"Margherita","price":-1}`, []string{"price"}, false},
		{"three decimals", `{"name":"Margherita","price":8.555}`, []string{"price"}, false},
		{"too expensive", `{"name":"Margherita","price":1000.01}`, []string{"price"}, false},
		{"negative calories", `{"name":"Margherita","price":8.5,"nutritionalInfo":{"calories":-1}}`, []string{"nutritionalInfo.calories"}, false},
		{"bad image url", `{"name":"Margherita","price":8.5,"imageUrl":"not a url"}`, []string{"imageUrl"}, false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var req PizzaRequest
			err := BindJSON(newContext(http.MethodPost, "/api/pizzas", tt.body), &req)
			if tt.wantSuccess {
				assert.NoError(t, err)
				return
			}
			fields := fieldErrors(t, err)
			for _, field := range tt.wantFields {
				assert.Contains(t, fields, field)
			}
		})
	}
}

func TestBindJSONCollectsNestedOrderLineErrors(t *testing.T) {
	var req CreateOrderRequest
	err := BindJSON(newContext(http.MethodPost, "/api/orders",
		`{"customerId":1,"orderLines":[{"pizzaId":1,"quantity":2},{"pizzaId":2,"quantity":101}]}`), &req)

	fields := fieldErrors(t, err)
	assert.Equal(t, "must be less than or equal to 100", fields["orderLines[1].quantity"])
}

func TestBindJSONEmptyOrderLines(t *testing.T) {
	var req CreateOrderRequest
	err := BindJSON(newContext(http.MethodPost, "/api/orders", `{"customerId":1,"orderLines":[]}`), &req)
	assert.Contains(t, fieldErrors(t, err), "orderLines")
}

func TestBindJSONBodyErrors(t *testing.T) {
	var req LoginRequest
	fields := fieldErrors(t, BindJSON(newContext(http.MethodPost, "/api/auth/login", ""), &req))
	assert.Equal(t, "request body is required", fields["body"])

	fields = fieldErrors(t, BindJSON(newContext(http.MethodPost, "/api/auth/login", "{"), &req))
	assert.Contains(t, fields, "body")
}

func TestBindJSONOrderStatus(t *testing.T) {
	var req UpdateOrderStatusRequest
	assert.NoError(t, BindJSON(newContext(http.MethodPatch, "/api/orders/1/status", `{"status":"READY"}`), &req))
	assert.Equal(t, models.OrderStatusReady, req.Status)

	err := BindJSON(newContext(http.MethodPatch, "/api/orders/1/status", `{"status":"SHIPPED"}`), &req)
	assert.Contains(t, fieldErrors(t, err)["status"], "PENDING")
}

func TestRegisterRequestPhone(t *testing.T) {
	req := RegisterRequest{Phone: "+34 (600) 123-456"}
	assert.Empty(t, req.Validate())

	req.Phone = "call me"
	assert.Equal(t, "phone", req.Validate()[0].Field)
}

func TestToPizzaModelDefaultsAvailable(t *testing.T) {
	price := decimal.RequireFromString("8.5")
	pizza := ToPizzaModel(&PizzaRequest{Name: "Margherita", Price: &price})
	assert.True(t, pizza.Available)
	assert.Equal(t, "8.50", pizza.Price.StringFixed(2))
	assert.Nil(t, pizza.NutritionalInfo)

	unavailable := false
	pizza = ToPizzaModel(&PizzaRequest{Name: "Margherita", Price: &price, Available: &unavailable,
		NutritionalInfo: &NutritionalInfoRequest{Calories: 800}})
	assert.False(t, pizza.Available)
	assert.Equal(t, 800, pizza.NutritionalInfo.Calories)
}

func TestApplyPizzaRequestKeepsOmittedFields(t *testing.T) {
	price := decimal.RequireFromString("9.25")
	pizza := &models.Pizza{Name: "Diavola", Available: false, ImageURL: "/uploads/diavola.png"}

	ApplyPizzaRequest(pizza, &PizzaRequest{Name: "Diavola Piccante", Price: &price})
	assert.Equal(t, "Diavola Piccante", pizza.Name)
	assert.False(t, pizza.Available)
	assert.Equal(t, "/uploads/diavola.png", pizza.ImageURL)

	available := true
	ApplyPizzaRequest(pizza, &PizzaRequest{Name: "Diavola", Price: &price, Available: &available})
	assert.True(t, pizza.Available)
}

func TestOrderResponseJSON(t *testing.T) {
	order := &models.Order{ID: 7, OrderNumber: "ORD-1A2B3C4D", CustomerID: 3, Status: models.OrderStatusPending}
	order.AddLine(models.Pizza{ID: 1, Name: "Margherita", Price: decimal.RequireFromString("8.50")}, 2)
	order.OrderLines[0].Pizza.Name = "Margherita"

	raw, err := json.Marshal(ToOrderResponse(order))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 17.0, body["totalAmount"])
	assert.Equal(t, "PENDING", body["status"])
	lines := body["orderLines"].([]any)
	assert.Equal(t, "Margherita", lines[0].(map[string]any)["pizzaName"])
}

func TestCustomerResponseHasNoPassword(t *testing.T) {
	raw, err := json.Marshal(ToCustomerResponse(&models.Customer{Email: "a@b.c", PasswordHash: "hash"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
}

func TestParsePageRequest(t *testing.T) {
	page, err := ParsePageRequest(newContext(http.MethodGet, "/api/pizzas?page=2&size=500&sort=price,desc", ""))
	require.NoError(t, err)
	assert.Equal(t, repositories.PageRequest{Page: 2, Size: repositories.MaxPageSize, Sort: "price", Desc: true}, page)

	page, err = ParsePageRequest(newContext(http.MethodGet, "/api/pizzas", ""))
	require.NoError(t, err)
	assert.Equal(t, repositories.DefaultPageSize, page.Size)

	_, err = ParsePageRequest(newContext(http.MethodGet, "/api/pizzas?page=9223372036854775807&size=100", ""))
	assert.ErrorContains(t, err, "page")

	_, err = ParsePageRequest(newContext(http.MethodGet, "/api/pizzas?page=-1", ""))
	assert.Contains(t, fieldErrors(t, err), "page")

	_, err = ParsePageRequest(newContext(http.MethodGet, "/api/pizzas?sort=name,sideways", ""))
	assert.Contains(t, fieldErrors(t, err), "sort")
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]int{1, 2}, repositories.PageRequest{Page: 1, Size: 2}, 5)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(5), resp.TotalElements)

	empty := NewPageResponse[int](nil, repositories.PageRequest{}, 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)
}
