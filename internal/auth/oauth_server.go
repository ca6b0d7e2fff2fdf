// Package auth runs the OAuth2 token endpoint for machine clients. Clients use
// the client_credentials grant and receive the same HS256 JWTs that interactive
// login issues, carrying the owning customer's identity and role.
package auth

import (
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OAuthService issues client_credentials tokens for registered API clients
type OAuthService struct {
	server *server.Server
	store  *GormClientStore
}

func NewOAuthService(db *gorm.DB, tokens services.TokenService) *OAuthService {
	clients := NewGormClientStore(db)

	srv := server.NewServer(&server.Config{
		TokenType:         "Bearer",
		AllowedGrantTypes: []oauth2.GrantType{oauth2.ClientCredentials},
	}, newManager(db, clients, tokens))
	srv.SetClientInfoHandler(clientCredentials)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})

	return &OAuthService{server: srv, store: clients}
}

// newManager wires the client and token stores. Refresh tokens are never
// issued: clients simply request a new access token.
func newManager(db *gorm.DB, clients *GormClientStore, tokens services.TokenService) *manage.Manager {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokens.Expiration()})
	manager.MapAccessGenerate(NewJWTAccessGenerate(tokens, repositories.NewStore(db).Customers()))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(clients)
	return manager
}

// Server exposes the underlying go-oauth2 server
func (o *OAuthService) Server() *server.Server {
	return o.server
}

// expiresIn renders a token lifetime in whole seconds
func expiresIn(d time.Duration) int64 {
	return int64(d / time.Second)
}
