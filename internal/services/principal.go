package services

import (
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
)

// Principal is the authenticated caller as read from the access token
type Principal struct {
	CustomerID uint
	Email      string
	Role       models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// authorizeCustomer allows admins and the customer itself
func (p Principal) authorizeCustomer(customerID uint) error {
	if p.IsAdmin() || p.CustomerID == customerID {
		return nil
	}
	return &models.ForbiddenError{Message: "access to another customer's resources is not allowed"}
}
