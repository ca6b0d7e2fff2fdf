package controllers

import (
	"strconv"

	"github.com/franciscosanchezn/pizzastore-api/internal/middleware"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
)

// pathID parses a positive numeric path parameter
func pathID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// queryID parses an optional positive numeric query parameter
func queryID(ctx *gin.Context, name string) (*uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewValidationError(name, "must be a positive integer")
	}
	value := uint(id)
	return &value, nil
}

// queryBool parses an optional boolean query parameter
func queryBool(ctx *gin.Context, name string) (*bool, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewValidationError(name, "must be true or false")
	}
	return &value, nil
}

// principal returns the authenticated caller. Routes using it sit behind JWTAuth.
func principal(ctx *gin.Context) (services.Principal, error) {
	p, ok := middleware.CurrentPrincipal(ctx)
	if !ok {
		return services.Principal{}, &models.UnauthenticatedError{Message: "User not authenticated"}
	}
	return p, nil
}

func uintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
