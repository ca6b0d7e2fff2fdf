package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a machine client allowed to obtain tokens with the
// client_credentials grant. Tokens act on behalf of the owning customer.
type OAuthClient struct {
	ID         string `gorm:"primaryKey;size:64"`
	Secret     string `gorm:"not null"` // bcrypt hash
	Name       string `gorm:"size:100;not null"`
	Domain     string `gorm:"size:255"`
	CustomerID uint   `gorm:"not null;index"`
	Scopes     string // space separated
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// GetID implements oauth2.ClientInfo
func (c *OAuthClient) GetID() string {
	return c.ID
}

// GetSecret implements oauth2.ClientInfo
func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

// GetDomain implements oauth2.ClientInfo
func (c *OAuthClient) GetDomain() string {
	return c.Domain
}

// IsPublic implements oauth2.ClientInfo
func (c *OAuthClient) IsPublic() bool {
	return false
}

// GetUserID implements oauth2.ClientInfo
func (c *OAuthClient) GetUserID() string {
	return strconv.FormatUint(uint64(c.CustomerID), 10)
}

// VerifyPassword implements oauth2.ClientPasswordVerifier against the stored hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
