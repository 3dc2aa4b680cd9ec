package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a CRM user account. Users are the owning principals for
// leads, contacts, deals and activities.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null" validate:"required,min=3,max=150"`
	Email        string    `json:"email" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsOrganizer  bool      `json:"is_organizer" gorm:"default:true"`
	IsAgent      bool      `json:"is_agent" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Organization represents a company owned by exactly one user. Its API key,
// when set, authenticates requests as the organization's owner.
type Organization struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name    string    `json:"name" gorm:"not null" validate:"required,min=1,max=255"`
	OwnerID uuid.UUID `json:"owner" gorm:"type:uuid;not null;index"`
	Owner   *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`

	// APIKey is an opaque, rotatable secret. NULL means key auth is disabled
	// for this organization. Uniqueness is what makes key -> owner resolution
	// unambiguous.
	APIKey *string `json:"api_key,omitempty" gorm:"uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
