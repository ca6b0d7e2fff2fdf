package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ClientController manages the OAuth2 clients used with the client_credentials grant
type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register a client acting for a customer (the caller by default). The secret is only returned here.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	caller, err := principal(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.CreateClientRequest
	if err := dto.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	owner := req.CustomerID
	if owner == 0 {
		owner = caller.CustomerID
	}

	client, secret, err := cc.clientService.CreateClient(c.Request.Context(), services.NewClient{
		Name:       req.Name,
		Domain:     req.Domain,
		Scopes:     req.Scopes,
		CustomerID: owner,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.WithFields(log.Fields{"client_id": client.ID, "customer_id": owner}).Info("OAuth2 client created")
	resp := dto.ToClientResponse(client)
	resp.Secret = secret
	c.JSON(http.StatusCreated, resp)
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} dto.ClientResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.ListClients(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, dto.ToClientResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetClient godoc
// @Summary Get OAuth2 client
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/clients/{id} [get]
func (cc *ClientController) GetClient(c *gin.Context) {
	client, err := cc.clientService.GetClientByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete a client and revoke the tokens issued to it
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
