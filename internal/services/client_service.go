package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewClient describes an OAuth2 client to register
type NewClient struct {
	Name       string
	Domain     string
	Scopes     string
	CustomerID uint
}

// ClientService manages OAuth2 clients for the client_credentials grant
type ClientService interface {
	// CreateClient stores a client and returns it with the plain secret, shown only once
	CreateClient(ctx context.Context, req NewClient) (*models.OAuthClient, string, error)
	ListClients(ctx context.Context) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	// DeleteClient removes the client and the tokens issued to it
	DeleteClient(ctx context.Context, clientID string) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func generateSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func (s *clientService) CreateClient(ctx context.Context, req NewClient) (*models.OAuthClient, string, error) {
	db := s.db.WithContext(ctx)

	var owner models.Customer
	if err := db.First(&owner, req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NewBusinessError("Customer not found with id: %d", req.CustomerID)
		}
		return nil, "", err
	}

	secret := generateSecret()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     string(hash),
		Name:       req.Name,
		Domain:     req.Domain,
		CustomerID: owner.ID,
		Scopes:     req.Scopes,
	}
	if err := db.Create(client).Error; err != nil {
		return nil, "", fmt.Errorf("creating oauth client: %w", err)
	}
	log.WithFields(log.Fields{"client_id": client.ID, "customer_id": owner.ID}).Info("OAuth client created")
	return client, secret, nil
}

func (s *clientService) ListClients(ctx context.Context) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "OAuthClient", ID: id}
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", clientID).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &models.NotFoundError{Resource: "OAuthClient", ID: clientID}
		}
		return tx.Where("client_id = ?", clientID).Delete(&models.OAuthToken{}).Error
	})
}
