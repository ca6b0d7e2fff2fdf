// create_dev_client registers a fixed OAuth2 client for local development, so
// the client_credentials flow can be tried without going through the admin API.
//
//	go run ./scripts -role admin -db pizzastore.sqlite
package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/pizzastore-api/internal/database"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	role := flag.String("role", "admin", "Owner role (admin or customer)")
	dbPath := flag.String("db", "pizzastore.sqlite", "SQLite database file")
	flag.Parse()

	ownerRole := models.RoleAdmin
	if *role == "customer" {
		ownerRole = models.RoleCustomer
	}

	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: *dbPath})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// Determine client credentials based on role
	clientID, clientSecret := "dev-client", "dev-secret-123"
	if ownerRole == models.RoleCustomer {
		clientID, clientSecret = "customer-client", "customer-secret-123"
	}

	// Check if client already exists
	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", ownerRole)
		printUsage(clientID, clientSecret)
		return
	}

	owner, err := ownerForRole(db, ownerRole)
	if err != nil {
		log.WithError(err).Fatal("Failed to get owner for role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash secret")
	}

	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s client", ownerRole),
		Domain:     "http://localhost",
		CustomerID: owner.ID,
		Scopes:     "read write",
	}
	if err := db.Create(&client).Error; err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("Development OAuth client created for %s (customer %d)\n", owner.Email, owner.ID)
	printUsage(clientID, clientSecret)
}

// ownerForRole finds or creates the development account the client acts for
func ownerForRole(db *gorm.DB, role models.Role) (*models.Customer, error) {
	email := fmt.Sprintf("dev-%s@pizzastore.local", string(role))

	var owner models.Customer
	err := db.Where("email = ?", email).First(&owner).Error
	if err == nil {
		return &owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner = models.Customer{Name: fmt.Sprintf("Development %s", role), Email: email, Role: role}
	if err := owner.SetPassword("dev-password-123"); err != nil {
		return nil, err
	}
	if err := db.Create(&owner).Error; err != nil {
		return nil, err
	}
	fmt.Printf("Created owner account %s (ID: %d, Role: %s)\n", owner.Email, owner.ID, owner.Role)
	return &owner, nil
}

func printUsage(clientID, clientSecret string) {
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}
