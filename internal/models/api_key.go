package models

import (
	"time"
)

// APIKey grants programmatic access for bot and third-party clients
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Key        string     `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// TableName specifies the table name for APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}

// LinkToken is a short-lived, single-use token for linking an external
// platform account (e.g. Discord) to a user.
type LinkToken struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Token            string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	Platform         string    `gorm:"size:32;not null;index:idx_link_tokens_platform_user,priority:1" json:"platform"`
	PlatformUserID   string    `gorm:"size:64;not null;index:idx_link_tokens_platform_user,priority:2" json:"platform_user_id"`
	PlatformUserName *string   `gorm:"size:255" json:"platform_user_name,omitempty"`
	ExpiresAt        time.Time `gorm:"not null;index" json:"expires_at"`
	Used             bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName specifies the table name for LinkToken model
func (LinkToken) TableName() string {
	return "link_tokens"
}

// CreateAPIKeyRequest is the request body for issuing an API key
type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required"`
}
