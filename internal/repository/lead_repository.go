package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

// leadOrderings maps API ordering fields to columns
var leadOrderings = map[string]string{
	"created_at": "created_at",
	"status":     "status",
}

// leadSearchColumns are the columns covered by the search parameter
var leadSearchColumns = []string{"first_name", "last_name", "email", "status"}

// LeadRepository handles lead database operations. Every read and write is
// scoped to the owning user; rows outside that scope behave as if they do
// not exist.
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a lead, attaches tags and runs the post-create hook inside
// a single transaction. A hook failure rolls back the insert, so the lead
// only exists if the hook succeeded.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID, postCreate func(*models.Lead) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}
		if err := replaceTags(tx, lead, "Tags", tagIDs); err != nil {
			return err
		}
		if postCreate != nil {
			if err := postCreate(lead); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns a page of leads owned by ownerID
func (r *LeadRepository) List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]models.Lead, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Lead{}).Where("owner_id = ?", ownerID)
	q = applyFilters(q, opts.Filters)
	q = applySearch(q, opts.Search, leadSearchColumns)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	q = applyOrdering(q, opts.Ordering, "created_at DESC", leadOrderings)
	limit, offset := opts.limitOffset()

	var leads []models.Lead
	if err := q.Preload("Tags").Limit(limit).Offset(offset).Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, count, nil
}

// GetByOwner retrieves a lead by ID within the owner's scope
func (r *LeadRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Preload("Tags").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&lead).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// Update saves lead fields and, when tagIDs is non-nil, replaces the tag set
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lead).Error; err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		return replaceTags(tx, lead, "Tags", tagIDs)
	})
}

// DeleteByOwner removes a lead within the owner's scope. Deleting a row the
// owner cannot see reports gorm.ErrRecordNotFound.
func (r *LeadRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Lead{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// replaceTags swaps the tag association of a record for the given tag IDs.
// A nil slice means "leave tags untouched"; an empty slice clears them.
func replaceTags(tx *gorm.DB, record interface{}, association string, tagIDs []uuid.UUID) error {
	if tagIDs == nil {
		return nil
	}
	if len(tagIDs) == 0 {
		if err := tx.Model(record).Association(association).Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(tagIDs) {
		return fmt.Errorf("unknown tag id in %v: %w", tagIDs, gorm.ErrRecordNotFound)
	}
	if err := tx.Model(record).Association(association).Replace(&tags); err != nil {
		return fmt.Errorf("failed to replace tags: %w", err)
	}
	return nil
}
