package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// List returns a page of organizations. The collection is not owner-filtered;
// every authenticated principal sees all organizations.
func (r *OrganizationRepository) List(ctx context.Context, opts ListOptions) ([]models.Organization, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Organization{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	limit, offset := opts.limitOffset()
	var orgs []models.Organization
	if err := q.Order("created_at ASC").Limit(limit).Offset(offset).Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, count, nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// GetByAPIKey resolves an API key to its organization. Used by the
// authentication middleware to map a key to the organization's owner.
func (r *OrganizationRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Preload("Owner").Where("api_key = ?", apiKey).First(&org).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve api key: %w", err)
	}
	return &org, nil
}

// FirstOwnedBy returns the user's first owned organization, in creation
// order. This is the organization stamped onto new leads, contacts and deals.
func (r *OrganizationRepository) FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		First(&org).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get first owned organization: %w", err)
	}
	return &org, nil
}

// Update saves organization fields
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	if err := r.db.WithContext(ctx).Save(org).Error; err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

// UpdateAPIKey sets a new API key on the organization row
func (r *OrganizationRepository) UpdateAPIKey(ctx context.Context, id uuid.UUID, apiKey string) error {
	result := r.db.WithContext(ctx).Model(&models.Organization{}).Where("id = ?", id).Update("api_key", apiKey)
	if result.Error != nil {
		return fmt.Errorf("failed to rotate api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an organization. Dependent leads, contacts and deals are
// removed by the ON DELETE CASCADE constraints on their organization FK.
func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Organization{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete organization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
