package models

import "time"

// OAuthToken records an access token issued to an API client through the
// client_credentials grant. Deleting a client deletes its tokens. Refresh
// tokens are not issued, clients request a fresh access token instead.
type OAuthToken struct {
	ID          uint      `gorm:"primaryKey"`
	ClientID    string    `gorm:"not null;index"`
	UserID      string    `gorm:"index"`
	AccessToken string    `gorm:"uniqueIndex;not null"`
	Scopes      string    `gorm:"size:255"`
	IssuedAt    time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (OAuthToken) TableName() string { return "oauth_tokens" }

// Lifetime is the validity window granted at issue time
func (t OAuthToken) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// Expired reports whether the token is no longer valid at now
func (t OAuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
