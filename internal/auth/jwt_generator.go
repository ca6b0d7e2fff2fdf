package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
)

// JWTAccessGenerate generates OAuth2 access tokens as API JWTs (sub, role, uid)
// for the customer that owns the client
type JWTAccessGenerate struct {
	tokens    services.TokenService
	customers repositories.CustomerRepository
}

func NewJWTAccessGenerate(tokens services.TokenService, customers repositories.CustomerRepository) *JWTAccessGenerate {
	return &JWTAccessGenerate{tokens: tokens, customers: customers}
}

// Token is called by the OAuth2 manager to generate access tokens
func (g *JWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// For client_credentials the user comes from the client owner
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: no user ID available")
	}

	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("invalid user ID format: %w", err)
	}

	// role is always read from the database so a demoted owner loses access
	customer, err := g.customers.FindByID(ctx, uint(id))
	if err != nil {
		return "", "", fmt.Errorf("failed to load client owner: %w", err)
	}

	claims := services.NewClaims(customer, data.TokenInfo.GetAccessCreateAt(), data.TokenInfo.GetAccessExpiresIn())
	claims.Audience = jwt.ClaimStrings{data.Client.GetID()}
	claims.Scope = data.TokenInfo.GetScope()

	access, err := g.tokens.Sign(claims)
	if err != nil {
		return "", "", err
	}
	if isGenRefresh {
		return "", "", fmt.Errorf("refresh tokens are not issued for client credentials")
	}
	return access, "", nil
}
