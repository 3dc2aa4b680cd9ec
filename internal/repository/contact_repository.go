package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

var contactOrderings = map[string]string{
	"created_at": "created_at",
	"first_name": "first_name",
}

var contactSearchColumns = []string{"first_name", "last_name", "email", "description"}

// ContactRepository handles contact database operations, owner-scoped like
// the lead repository.
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a contact and attaches tags in one transaction
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contact).Error; err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}
		return replaceTags(tx, contact, "Tags", tagIDs)
	})
}

// List returns a page of contacts owned by ownerID
func (r *ContactRepository) List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]models.Contact, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Contact{}).Where("owner_id = ?", ownerID)
	q = applyFilters(q, opts.Filters)
	q = applySearch(q, opts.Search, contactSearchColumns)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	q = applyOrdering(q, opts.Ordering, "created_at DESC", contactOrderings)
	limit, offset := opts.limitOffset()

	var contacts []models.Contact
	if err := q.Preload("Tags").Limit(limit).Offset(offset).Find(&contacts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, count, nil
}

// GetByOwner retrieves a contact by ID within the owner's scope
func (r *ContactRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).Preload("Tags").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&contact).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

// Update saves contact fields and optionally replaces the tag set
func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(contact).Error; err != nil {
			return fmt.Errorf("failed to update contact: %w", err)
		}
		return replaceTags(tx, contact, "Tags", tagIDs)
	})
}

// DeleteByOwner removes a contact within the owner's scope
func (r *ContactRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Contact{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
