package services

import (
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims of every access token the API accepts.
// Subject is the customer email.
type Claims struct {
	Role  models.Role `json:"role"`
	UID   uint        `json:"uid"`
	Scope string      `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens
type TokenService interface {
	// Issue signs a token for the customer valid for the configured expiration
	Issue(customer *models.Customer) (string, time.Time, error)
	// Sign signs arbitrary claims, used by the OAuth2 access generator
	Sign(claims *Claims) (string, error)
	// Parse verifies signature, algorithm and time claims
	Parse(token string) (*Claims, error)
	Expiration() time.Duration
}

type tokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService creates a new instance of TokenService
func NewTokenService(secret string, expiration time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), expiration: expiration, now: time.Now}
}

// NewClaims builds the standard claims for a customer
func NewClaims(customer *models.Customer, issuedAt time.Time, ttl time.Duration) *Claims {
	return &Claims{
		Role: customer.Role,
		UID:  customer.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

func (s *tokenService) Expiration() time.Duration {
	return s.expiration
}

func (s *tokenService) Issue(customer *models.Customer) (string, time.Time, error) {
	claims := NewClaims(customer, s.now(), s.expiration)
	token, err := s.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

func (s *tokenService) Sign(claims *Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

func (s *tokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// reject anything but HMAC to prevent algorithm confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &models.UnauthenticatedError{Message: "invalid token: " + err.Error()}
	}

	if claims.Subject == "" {
		return nil, &models.UnauthenticatedError{Message: "token missing required 'sub' claim"}
	}
	if claims.UID == 0 {
		return nil, &models.UnauthenticatedError{Message: "token missing required 'uid' claim"}
	}
	if !claims.Role.Valid() {
		return nil, &models.UnauthenticatedError{Message: fmt.Sprintf("invalid role '%s'", claims.Role)}
	}
	return claims, nil
}
