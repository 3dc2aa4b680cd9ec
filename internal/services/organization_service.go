package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// OrganizationStore is the persistence interface required by
// OrganizationService.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	List(ctx context.Context, opts repository.ListOptions) ([]models.Organization, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByAPIKey(ctx context.Context, key string) (*models.Organization, error)
	FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateAPIKey(ctx context.Context, id uuid.UUID, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrganizationService handles organization business logic. Listing and
// detail reads are not owner-scoped; key rotation is owner-only.
type OrganizationService struct {
	orgs   OrganizationStore
	logger *logrus.Entry
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgs OrganizationStore, logger *logrus.Logger) *OrganizationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OrganizationService{
		orgs:   orgs,
		logger: logger.WithField("component", "organization_service"),
	}
}

// CreateOrganizationRequest is the client payload for organization creation
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// UpdateOrganizationRequest is the client payload for partial updates
type UpdateOrganizationRequest struct {
	Name *string `json:"name"`
}

// Create persists a new organization owned by ownerID and issues its
// initial API key.
func (s *OrganizationService) Create(ctx context.Context, ownerID uuid.UUID, req CreateOrganizationRequest) (*models.Organization, error) {
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:    req.Name,
		OwnerID: ownerID,
		APIKey:  &key,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"organization_id": org.ID,
		"owner_id":        ownerID,
	}).Info("Organization created")
	return org, nil
}

// List returns a page of organizations
func (s *OrganizationService) List(ctx context.Context, q ListQuery) ([]models.Organization, int64, error) {
	opts, err := buildListOptions(q, nil)
	if err != nil {
		return nil, 0, err
	}
	return s.orgs.List(ctx, opts)
}

// Get returns a single organization
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

// Update applies a partial update to an organization
func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = *req.Name
	}

	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Delete removes an organization; dependent records cascade
func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orgs.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RegenerateKey replaces an organization's API key with a fresh one. Only
// the organization's owner may rotate the key. The previous key stops
// working immediately.
func (s *OrganizationService) RegenerateKey(ctx context.Context, actorID, id uuid.UUID) (*models.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actorID {
		return nil, ErrForbidden
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	if err := s.orgs.UpdateAPIKey(ctx, id, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	org.APIKey = &key
	s.logger.WithField("organization_id", id).Info("API key regenerated")
	return org, nil
}

// ResolveAPIKey maps an API key to the owner of the organization holding
// it. An unknown key yields ErrInvalidCredentials.
func (s *OrganizationService) ResolveAPIKey(ctx context.Context, key string) (*models.User, error) {
	org, err := s.orgs.GetByAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if org.Owner == nil {
		return nil, ErrInvalidCredentials
	}
	return org.Owner, nil
}
