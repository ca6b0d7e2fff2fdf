package database

import (
	"fmt"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&models.Pizza{},
		&models.NutritionalInfo{},
		&models.Customer{},
		&models.Order{},
		&models.OrderLine{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	}
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	log.Info("Running schema migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureAdmin creates the administrator account if no customer uses the email yet
func EnsureAdmin(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("checking admin account: %w", err)
	}
	if count > 0 {
		log.WithField("email", email).Debug("Admin account already present")
		return nil
	}

	admin := &models.Customer{
		Name:  "Administrator",
		Email: email,
		Role:  models.RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	log.WithField("email", email).Info("Admin account created")
	return nil
}

// SeedPizzas inserts the starter menu when the pizza table is empty
func SeedPizzas(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Pizza{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	pizzas := []models.Pizza{
		{
			Name:        "Margherita",
			Description: "Tomato sauce, mozzarella, basil",
			Price:       decimal.RequireFromString("8.50"),
			Available:   true,
			NutritionalInfo: &models.NutritionalInfo{
				Calories: 850, Protein: 35, Carbs: 100, Fat: 30,
			},
		},
		{
			Name:        "Pepperoni",
			Description: "Tomato sauce, mozzarella, pepperoni",
			Price:       decimal.RequireFromString("9.50"),
			Available:   true,
		},
		{
			Name:        "Vegetarian",
			Description: "Tomato sauce, mozzarella, bell peppers, olives",
			Price:       decimal.RequireFromString("10.00"),
			Available:   true,
		},
	}
	if err := db.Create(&pizzas).Error; err != nil {
		return fmt.Errorf("seeding pizzas: %w", err)
	}
	log.WithFields(logrus.Fields{"count": len(pizzas)}).Info("Database seeded successfully")
	return nil
}
