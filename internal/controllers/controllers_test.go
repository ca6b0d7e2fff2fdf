package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db, mock
}

func healthRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.GET("/health", NewHealthController(db).Health)
	return router
}

func TestHealthUp(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing()

	w := httptest.NewRecorder()
	healthRouter(db).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "UP", gjson.Get(w.Body.String(), "database").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthDatabaseDown(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	w := httptest.NewRecorder()
	healthRouter(db).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DOWN", gjson.Get(w.Body.String(), "database").String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPathID(t *testing.T) {
	testCases := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range testCases {
		t.Run(tt.raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			id, err := pathID(c, "id")
			if tt.wantErr {
				var validationErr *models.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "id", validationErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestQueryParams(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/pizzas?available=true&customerId=5&minPrice=abc", nil)

	available, err := queryBool(c, "available")
	require.NoError(t, err)
	require.NotNil(t, available)
	assert.True(t, *available)

	customerID, err := queryID(c, "customerId")
	require.NoError(t, err)
	assert.Equal(t, uint(5), *customerID)

	missing, err := queryID(c, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = queryDecimal(c, "minPrice")
	assert.Error(t, err)
}

func TestPrincipalRequiresAuthentication(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := principal(c)

	var unauthErr *models.UnauthenticatedError
	assert.ErrorAs(t, err, &unauthErr)
}
