package middleware

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// context keys set by JWTAuth
const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
	clientIDKey  = "clientID"
	scopesKey    = "scopes"
	authTypeKey  = "auth_type"
)

// JWTAuth validates the Bearer access token (customer login or OAuth2 client
// credentials) and stores the caller in the gin context.
// Browsers cannot set headers on websocket upgrades, so those may pass the
// token in the access_token query parameter instead.
func JWTAuth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="pizzastore"`)
			abortWithError(c, http.StatusUnauthorized, "Missing or malformed Authorization header. A valid Bearer token is required.")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			requestLogger(c).WithError(err).Debug("Rejected access token")
			c.Header("WWW-Authenticate", `Bearer realm="pizzastore", error="invalid_token"`)
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(userIDKey, claims.UID)
		c.Set(userEmailKey, claims.Subject)
		c.Set(userRoleKey, claims.Role)
		if claims.Scope != "" {
			c.Set(scopesKey, claims.Scope)
		}
		if len(claims.Audience) > 0 {
			c.Set(clientIDKey, claims.Audience[0])
			c.Set(authTypeKey, "oauth2")
		} else {
			c.Set(authTypeKey, "jwt")
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query("access_token"); token != "" {
				return token, true
			}
		}
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentPrincipal returns the caller stored by JWTAuth
func CurrentPrincipal(c *gin.Context) (services.Principal, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return services.Principal{}, false
	}
	uid, ok := id.(uint)
	if !ok {
		return services.Principal{}, false
	}
	role, _ := c.Get(userRoleKey)
	r, _ := role.(models.Role)
	return services.Principal{
		CustomerID: uid,
		Email:      c.GetString(userEmailKey),
		Role:       r,
	}, true
}
