// models/user.go
package models

import (
	"strings"
	"time"
)

// Verification states for a user's identity document.
const (
	IDStatusPending  = "pending"
	IDStatusVerified = "verified"
	IDStatusRejected = "rejected"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Profile   *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Problems  []Problem    `gorm:"foreignKey:OwnerID" json:"problems,omitempty"`
	Solutions []Solution   `gorm:"foreignKey:AuthorID" json:"solutions,omitempty"`
}

// Name returns the user's preferred display name.
func (u *User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserProfile is created together with its User and carries the
// verification state, credit balance and public profile fields.
type UserProfile struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	UserID  uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Avatar  string  `json:"avatar"`
	Bio     string  `json:"bio"`
	Skills  string  `json:"skills"`
	Credits int     `gorm:"default:0" json:"credits"`
	Rating  float64 `gorm:"default:5" json:"rating"`

	// Identity verification. IDDocumentHash is unique across profiles so
	// the same document cannot verify two accounts.
	IDDocumentKey  string  `json:"-"`
	IDStatus       string  `gorm:"default:pending" json:"id_status"`
	IDDocumentHash *string `gorm:"uniqueIndex" json:"-"`

	LocationText string `json:"location_text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// IsVerified reports whether the profile passed identity verification.
func (p *UserProfile) IsVerified() bool {
	return p.IDStatus == IDStatusVerified
}
