package middleware

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the caller has one of the roles.
// It must run after JWTAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	required := strings.Join(names, " or ")

	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		requestLogger(c).WithField("role", principal.Role).Warnf("Access denied, %s role required", required)
		abortWithError(c, http.StatusForbidden, "Insufficient permissions: "+required+" role required")
	}
}
