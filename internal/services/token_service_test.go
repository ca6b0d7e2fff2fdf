package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenIssueAndParse(t *testing.T) {
	tokens := NewTokenService(testSecret, 24*time.Hour)
	customer := &models.Customer{ID: 7, Email: "ana@example.com", Role: models.RoleCustomer}

	token, expiresAt, err := tokens.Issue(customer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Subject)
	assert.Equal(t, uint(7), claims.UID)
	assert.Equal(t, models.RoleCustomer, claims.Role)
}

func TestTokenParseRejects(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	customer := &models.Customer{ID: 1, Email: "ana@example.com", Role: models.RoleAdmin}
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	expired := NewClaims(customer, now.Add(-2*time.Hour), time.Hour)
	noExpiry := NewClaims(customer, now, time.Hour)
	noExpiry.ExpiresAt = nil
	badRole := NewClaims(customer, now, time.Hour)
	badRole.Role = "superuser"
	noUID := NewClaims(&models.Customer{Email: "x@example.com", Role: models.RoleCustomer}, now, time.Hour)

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), NewClaims(customer, now, time.Hour))},
		{"wrong algorithm", sign(jwt.SigningMethodHS512, []byte(testSecret), NewClaims(customer, now, time.Hour))},
		{"none algorithm", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, NewClaims(customer, now, time.Hour))},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"missing exp", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"unknown role", sign(jwt.SigningMethodHS256, []byte(testSecret), badRole)},
		{"missing uid", sign(jwt.SigningMethodHS256, []byte(testSecret), noUID)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			requireErrorAs[*models.UnauthenticatedError](t, err)
		})
	}
}
