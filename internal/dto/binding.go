// Package dto holds the request and response shapes of the HTTP API and the
// mappers between them and the persisted models.
package dto

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator is implemented by requests with rules that binding tags cannot express
type Validator interface {
	Validate() []models.FieldError
}

func init() {
	// prices and totals are written as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			return models.OrderStatus(fl.Field().String()).Valid()
		})
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// BindJSON decodes the body into req, runs tag validation and then req.Validate.
// Every failure is collected into one *models.ValidationError.
func BindJSON(c *gin.Context, req any) error {
	var fields []models.FieldError
	if err := c.ShouldBindJSON(req); err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			fields = append(fields, translate(validationErrs)...)
		case errors.Is(err, io.EOF):
			return models.NewValidationError("body", "request body is required")
		default:
			return models.NewValidationError("body", "malformed JSON: "+err.Error())
		}
	}
	if v, ok := req.(Validator); ok {
		fields = append(fields, v.Validate()...)
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func translate(errs validator.ValidationErrors) []models.FieldError {
	fields := make([]models.FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, models.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return fields
}

// fieldPath drops the struct name from a validator namespace:
// "CreateOrderRequest.orderLines[0].quantity" -> "orderLines[0].quantity"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at least %s", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "e164", "phone":
		return "must be a valid phone number"
	case "orderstatus":
		return "must be one of PENDING, CONFIRMED, PREPARING, READY, DELIVERED, CANCELLED"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
