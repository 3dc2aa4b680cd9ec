package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crm-service/internal/models"
	natsclient "crm-service/internal/nats"
	"crm-service/internal/repository"
)

// ContactStore is the persistence interface required by ContactService
type ContactStore interface {
	Create(ctx context.Context, contact *models.Contact, tagIDs []uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Contact, int64, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact, tagIDs []uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

var contactFilterColumns = map[string]string{
	"organization": "organization_id",
	"email":        "email",
}

// ContactService handles contact business logic
type ContactService struct {
	contacts ContactStore
	orgs     OrganizationFinder
	events   *natsclient.Client
	logger   *logrus.Entry
}

// NewContactService creates a new contact service
func NewContactService(contacts ContactStore, orgs OrganizationFinder, events *natsclient.Client, logger *logrus.Logger) *ContactService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ContactService{
		contacts: contacts,
		orgs:     orgs,
		events:   events,
		logger:   logger.WithField("component", "contact_service"),
	}
}

// CreateContactRequest is the client payload for contact creation
type CreateContactRequest struct {
	FirstName   string      `json:"first_name" binding:"required,max=100"`
	LastName    string      `json:"last_name" binding:"required,max=100"`
	Email       string      `json:"email"`
	Address     string      `json:"address"`
	Description string      `json:"description"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// UpdateContactRequest is the client payload for partial contact updates
type UpdateContactRequest struct {
	FirstName   *string     `json:"first_name"`
	LastName    *string     `json:"last_name"`
	Email       *string     `json:"email"`
	Address     *string     `json:"address"`
	Description *string     `json:"description"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// Create persists a new contact owned by ownerID, stamping owner and
// organization server-side.
func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, req CreateContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		OwnerID:     ownerID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Address:     req.Address,
		Description: req.Description,
	}

	org, err := s.orgs.FirstOwnedBy(ctx, ownerID)
	if err == nil {
		contact.OrganizationID = &org.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve owned organization: %w", err)
	}

	if err := s.contacts.Create(ctx, contact, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}

	event := &natsclient.RecordCreatedEvent{RecordID: contact.ID.String(), OwnerID: ownerID.String()}
	if contact.OrganizationID != nil {
		event.OrganizationID = contact.OrganizationID.String()
	}
	s.events.PublishRecordCreated(natsclient.EventContactCreated, event)
	return contact, nil
}

// List returns a page of the owner's contacts
func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]models.Contact, int64, error) {
	opts, err := buildListOptions(q, contactFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.contacts.List(ctx, ownerID, opts)
}

// Get returns a single contact within the owner's visibility scope
func (s *ContactService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	contact, err := s.contacts.GetByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Update applies a partial update to a contact within the owner's scope
func (s *ContactService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Address != nil {
		contact.Address = *req.Address
	}
	if req.Description != nil {
		contact.Description = *req.Description
	}

	if err := s.contacts.Update(ctx, contact, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact within the owner's scope
func (s *ContactService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.contacts.DeleteByOwner(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
