package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization role carried in access tokens
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Customer is a registered account. Email is the login key.
type Customer struct {
	ID             uint    `gorm:"primaryKey"`
	Name           string  `gorm:"size:100;not null"`
	Email          string  `gorm:"size:150;uniqueIndex;not null"`
	Phone          string  `gorm:"size:20"`
	Address        string  `gorm:"size:255"`
	PasswordHash   string  `gorm:"not null"`
	Role           Role    `gorm:"size:20;not null"`
	FavoritePizzas []Pizza `gorm:"many2many:customer_favorite_pizzas;"`
	Orders         []Order `gorm:"foreignKey:CustomerID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetPassword hashes the plain password with bcrypt and stores the hash
func (c *Customer) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a plain password against the stored hash
func (c *Customer) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(plain)) == nil
}

// IsAdmin is a shorthand for role checks
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}
