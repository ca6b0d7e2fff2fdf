package middleware

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An unexpected error occurred"

// ErrorHandler turns the last error attached with c.Error into the JSON error body.
// Handlers report failures with c.Error(err) and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := translate(err, c.Request.URL.Path)
		if status >= http.StatusInternalServerError {
			requestLogger(c).WithError(err).Error("Request failed")
		} else {
			requestLogger(c).WithError(err).Debug("Request rejected")
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func translate(err error, path string) (int, models.ErrorResponse) {
	var (
		validationErr *models.ValidationError
		unauthErr     *models.UnauthenticatedError
		forbiddenErr  *models.ForbiddenError
		notFoundErr   *models.NotFoundError
		duplicateErr  *models.DuplicateError
		businessErr   *models.BusinessError
	)

	switch {
	case errors.As(err, &validationErr):
		return errorBody(http.StatusBadRequest, "Validation failed", path, validationErr.Fields...)
	case errors.As(err, &unauthErr):
		return errorBody(http.StatusUnauthorized, unauthErr.Message, path)
	case errors.As(err, &forbiddenErr):
		return errorBody(http.StatusForbidden, forbiddenErr.Message, path)
	case errors.As(err, &notFoundErr):
		return errorBody(http.StatusNotFound, notFoundErr.Error(), path)
	case errors.As(err, &duplicateErr):
		return errorBody(http.StatusConflict, duplicateErr.Error(), path)
	case errors.As(err, &businessErr):
		return errorBody(http.StatusUnprocessableEntity, businessErr.Message, path)
	default:
		return errorBody(http.StatusInternalServerError, internalErrorMessage, path)
	}
}

func errorBody(status int, message, path string, fields ...models.FieldError) (int, models.ErrorResponse) {
	return status, models.NewErrorResponse(status, http.StatusText(status), message, path, fields...)
}

// abortWithError writes the error body directly, for rejections raised by middleware
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.NewErrorResponse(status, http.StatusText(status), message, c.Request.URL.Path))
}

// Recovery logs panics and answers 500 without exposing the panic value
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		requestLogger(c).WithField("panic", recovered).Error("Recovered from panic")
		abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
	})
}

// NotFound answers unknown routes with the standard error body
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path)
	}
}

// MethodNotAllowed answers known routes hit with the wrong verb
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed, "Method "+c.Request.Method+" is not supported for "+c.Request.URL.Path)
	}
}
