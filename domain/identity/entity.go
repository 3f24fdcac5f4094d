package identity

import (
	"strings"
	"time"
)

// User represents a user account resolved from an access token.
type User struct {
	ID        string `gorm:"primaryKey;type:text"`
	Email     string `gorm:"uniqueIndex;not null;type:text"`
	FirstName string `gorm:"type:text"`
	LastName  string `gorm:"type:text"`
	AvatarURL string `gorm:"type:text"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the user's full name, falling back to the email
// address when no name is set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Claims represents the identity carried by a validated access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
