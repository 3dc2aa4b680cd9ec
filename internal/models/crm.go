package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusLost      = "lost"
)

// Deal stages
const (
	DealStageProspecting = "prospecting"
	DealStageNegotiation = "negotiation"
	DealStageClosedWon   = "closed_won"
	DealStageClosedLost  = "closed_lost"
)

// Activity types
const (
	ActivityTypeCall    = "call"
	ActivityTypeEmail   = "email"
	ActivityTypeMeeting = "meeting"
	ActivityTypeNote    = "note"
)

// IsValidLeadStatus reports whether s is a known lead status.
func IsValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost:
		return true
	}
	return false
}

// IsValidDealStage reports whether s is a known deal stage.
func IsValidDealStage(s string) bool {
	switch s {
	case DealStageProspecting, DealStageNegotiation, DealStageClosedWon, DealStageClosedLost:
		return true
	}
	return false
}

// IsValidActivityType reports whether s is a known activity type.
func IsValidActivityType(s string) bool {
	switch s {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeMeeting, ActivityTypeNote:
		return true
	}
	return false
}

// Lead is a potential customer. Owner and organization are stamped server-side
// at creation and are never client-settable.
type Lead struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID        uuid.UUID     `json:"owner" gorm:"type:uuid;not null;index"`
	Owner          *User         `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	OrganizationID *uuid.UUID    `json:"organization" gorm:"type:uuid;index"`
	Organization   *Organization `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`

	FirstName string `json:"first_name" gorm:"not null" validate:"required,max=100"`
	LastName  string `json:"last_name" gorm:"not null" validate:"required,max=100"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Status string `json:"status" gorm:"default:'new';index" validate:"omitempty,oneof=new contacted qualified lost"`
	Source string `json:"source"`

	Tags []Tag `json:"tags,omitempty" gorm:"many2many:lead_tags;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact is an established person record.
type Contact struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID        uuid.UUID     `json:"owner" gorm:"type:uuid;not null;index"`
	Owner          *User         `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	OrganizationID *uuid.UUID    `json:"organization" gorm:"type:uuid;index"`
	Organization   *Organization `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`

	FirstName   string `json:"first_name" gorm:"not null" validate:"required,max=100"`
	LastName    string `json:"last_name" gorm:"not null" validate:"required,max=100"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Description string `json:"description"`

	Tags []Tag `json:"tags,omitempty" gorm:"many2many:contact_tags;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deal is a sales opportunity tied to a contact.
type Deal struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID        uuid.UUID     `json:"owner" gorm:"type:uuid;not null;index"`
	Owner          *User         `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	OrganizationID *uuid.UUID    `json:"organization" gorm:"type:uuid;index"`
	Organization   *Organization `json:"-" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	ContactID      uuid.UUID     `json:"contact" gorm:"type:uuid;not null;index"`
	Contact        *Contact      `json:"-" gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`

	Name        string  `json:"name" gorm:"not null" validate:"required,max=200"`
	Value       float64 `json:"value" gorm:"type:numeric(12,2);default:0"`
	Stage       string  `json:"stage" gorm:"default:'prospecting';index" validate:"omitempty,oneof=prospecting negotiation closed_won closed_lost"`
	Probability int     `json:"probability" gorm:"default:0"`

	Tags []Tag `json:"tags,omitempty" gorm:"many2many:deal_tags;"`

	ClosedAt  *time.Time `json:"closed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Activity is a logged interaction by a user, optionally referencing a contact
// and/or a lead. The date is stamped at creation and immutable.
type Activity struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID uuid.UUID `json:"user" gorm:"type:uuid;not null;index"`
	User   *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	ContactID *uuid.UUID `json:"contact" gorm:"type:uuid;index"`
	Contact   *Contact   `json:"-" gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	LeadID    *uuid.UUID `json:"lead" gorm:"type:uuid;index"`
	Lead      *Lead      `json:"-" gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`

	ActivityType string `json:"activity_type" gorm:"not null;index" validate:"required,oneof=call email meeting note"`
	Summary      string `json:"summary" gorm:"not null" validate:"required,max=255"`
	Details      string `json:"details"`

	Date time.Time `json:"date" gorm:"autoCreateTime"`
}

// Tag is a globally shared label. Tags have no owner; the name is unique
// across the whole system.
type Tag struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name  string    `json:"name" gorm:"uniqueIndex;not null" validate:"required,max=50"`
	Color string    `json:"color" gorm:"default:'#CCCCCC'"`
}
