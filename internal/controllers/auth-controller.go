package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthController handles customer registration and login
type AuthController struct {
	customerService services.CustomerService
}

func NewAuthController(customerService services.CustomerService) *AuthController {
	return &AuthController{customerService: customerService}
}

// Register godoc
// @Summary Register a customer
// @Description Create a CUSTOMER account. The email must not be in use.
// @Tags auth
// @Accept json
// @Produce json
// @Param customer body dto.RegisterRequest true "Registration"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := dto.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	customer, err := ac.customerService.Register(c.Request.Context(), dto.ToCustomerModel(&req), req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", "/api/customers/"+uintToString(customer.ID))
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a Bearer access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := dto.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := ac.customerService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.ExpiresAt).Round(time.Second) / time.Second),
		Customer:    dto.ToCustomerResponse(result.Customer),
	})
}
