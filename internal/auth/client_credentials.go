package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/server"
	log "github.com/sirupsen/logrus"
)

// TokenResponse is the RFC 6749 access token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// OAuthError is the RFC 6749 error response
type OAuthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HandleToken handles the token endpoint
// @Summary Token Endpoint
// @Description Obtain an access token with the client_credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Space separated subset of the client scopes"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} OAuthError
// @Failure 401 {object} OAuthError
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	if grantType != string(oauth2.ClientCredentials) {
		respondOAuthError(c, http.StatusBadRequest, oauth2errors.ErrUnsupportedGrantType)
		return
	}
	o.handleClientCredentials(c)
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	clientID, clientSecret, err := clientCredentials(c.Request)
	if err != nil {
		respondOAuthError(c, http.StatusBadRequest, oauth2errors.ErrInvalidRequest)
		return
	}

	// Validate client
	client, err := o.store.client(c.Request.Context(), clientID)
	if err != nil {
		log.WithField("client_id", clientID).Warn("Token request for unknown client")
		respondOAuthError(c, http.StatusUnauthorized, oauth2errors.ErrInvalidClient)
		return
	}

	if !client.VerifyPassword(clientSecret) {
		log.WithField("client_id", clientID).Warn("Token request with invalid client secret")
		respondOAuthError(c, http.StatusUnauthorized, oauth2errors.ErrInvalidClient)
		return
	}

	scope, ok := grantedScope(c.PostForm("scope"), client.Scopes)
	if !ok {
		respondOAuthError(c, http.StatusBadRequest, oauth2errors.ErrInvalidScope)
		return
	}

	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserID:       client.GetUserID(),
		Scope:        scope,
	})
	if err != nil {
		if errors.Is(err, oauth2errors.ErrInvalidClient) {
			respondOAuthError(c, http.StatusUnauthorized, oauth2errors.ErrInvalidClient)
			return
		}
		log.WithError(err).WithField("client_id", clientID).Error("Token generation failed")
		respondOAuthError(c, http.StatusInternalServerError, oauth2errors.ErrServerError)
		return
	}

	log.WithField("client_id", clientID).Info("Issued client credentials token")
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: ti.GetAccess(),
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn(ti.GetAccessExpiresIn()),
		Scope:       ti.GetScope(),
	})
}

// clientCredentials reads client credentials from the form, falling back to HTTP basic auth
func clientCredentials(r *http.Request) (string, string, error) {
	if id, secret, err := server.ClientFormHandler(r); err == nil {
		return id, secret, nil
	}
	return server.ClientBasicHandler(r)
}

// grantedScope returns the requested scopes when all of them belong to the client.
// An empty request grants every client scope.
func grantedScope(requested, allowed string) (string, bool) {
	if strings.TrimSpace(requested) == "" {
		return allowed, true
	}
	permitted := make(map[string]bool)
	for _, s := range strings.Fields(allowed) {
		permitted[s] = true
	}
	for _, s := range strings.Fields(requested) {
		if !permitted[s] {
			return "", false
		}
	}
	return strings.Join(strings.Fields(requested), " "), true
}

func respondOAuthError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, OAuthError{
		Error:            err.Error(),
		ErrorDescription: oauth2errors.Descriptions[err],
	})
}
