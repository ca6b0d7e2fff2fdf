package services

import (
	"context"
	"fmt"
	"io"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/storage"
	log "github.com/sirupsen/logrus"
)

// PizzaService provides methods to manage the pizza catalog
type PizzaService interface {
	// ListPizzas returns one page of pizzas matching the filter and the total count
	ListPizzas(ctx context.Context, filter repositories.PizzaFilter, page repositories.PageRequest) ([]models.Pizza, int64, error)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(ctx context.Context, id uint) (*models.Pizza, error)
	// CreatePizza creates a new pizza
	CreatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error)
	// UpdatePizza loads a pizza, lets apply change it and saves it
	UpdatePizza(ctx context.Context, id uint, apply func(*models.Pizza)) (*models.Pizza, error)
	// DeletePizza soft deletes a pizza by its ID
	DeletePizza(ctx context.Context, id uint) error
	// UploadImage stores the image and points the pizza at it
	UploadImage(ctx context.Context, id uint, filename string, r io.Reader) (*models.Pizza, error)
}

// pizzaService is the implementation of the PizzaService interface
type pizzaService struct {
	store  *repositories.Store
	images storage.ImageStore
}

// NewPizzaService creates a new instance of PizzaService
func NewPizzaService(store *repositories.Store, images storage.ImageStore) PizzaService {
	return &pizzaService{store: store, images: images}
}

func (s *pizzaService) ListPizzas(ctx context.Context, filter repositories.PizzaFilter, page repositories.PageRequest) ([]models.Pizza, int64, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, 0, models.NewValidationError("minPrice", "must not be greater than maxPrice")
	}
	return s.store.Pizzas().FindAll(ctx, filter, page)
}

func (s *pizzaService) GetPizzaByID(ctx context.Context, id uint) (*models.Pizza, error) {
	return s.store.Pizzas().FindByID(ctx, id)
}

func (s *pizzaService) CreatePizza(ctx context.Context, pizza *models.Pizza) (*models.Pizza, error) {
	if err := s.store.Pizzas().Create(ctx, pizza); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"pizza_id": pizza.ID, "name": pizza.Name}).Info("Pizza created")
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(ctx context.Context, id uint, apply func(*models.Pizza)) (*models.Pizza, error) {
	pizza, err := s.store.Pizzas().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(pizza)

	if err := s.store.Pizzas().Update(ctx, pizza); err != nil {
		return nil, err
	}
	return s.store.Pizzas().FindByID(ctx, id)
}

func (s *pizzaService) DeletePizza(ctx context.Context, id uint) error {
	if err := s.store.Pizzas().Delete(ctx, id); err != nil {
		return err
	}
	log.WithField("pizza_id", id).Info("Pizza deleted")
	return nil
}

func (s *pizzaService) UploadImage(ctx context.Context, id uint, filename string, r io.Reader) (*models.Pizza, error) {
	pizza, err := s.store.Pizzas().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	if err := s.store.Pizzas().UpdateImageURL(ctx, id, url); err != nil {
		if cleanupErr := s.images.Delete(ctx, url); cleanupErr != nil {
			log.WithError(cleanupErr).Warn("Failed to remove orphaned image")
		}
		return nil, fmt.Errorf("saving image url: %w", err)
	}

	if previous := pizza.ImageURL; previous != "" && previous != url {
		if err := s.images.Delete(ctx, previous); err != nil {
			log.WithError(err).WithField("pizza_id", id).Warn("Failed to remove previous image")
		}
	}
	pizza.ImageURL = url
	return pizza, nil
}
