package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

var dealOrderings = map[string]string{
	"created_at": "created_at",
	"value":      "value",
	"stage":      "stage",
}

var dealSearchColumns = []string{"name", "stage"}

// DealRepository handles deal database operations, owner-scoped
type DealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create inserts a deal and attaches tags in one transaction
func (r *DealRepository) Create(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deal).Error; err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}
		return replaceTags(tx, deal, "Tags", tagIDs)
	})
}

// List returns a page of deals owned by ownerID
func (r *DealRepository) List(ctx context.Context, ownerID uuid.UUID, opts ListOptions) ([]models.Deal, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Deal{}).Where("owner_id = ?", ownerID)
	q = applyFilters(q, opts.Filters)
	q = applySearch(q, opts.Search, dealSearchColumns)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	q = applyOrdering(q, opts.Ordering, "created_at DESC", dealOrderings)
	limit, offset := opts.limitOffset()

	var deals []models.Deal
	if err := q.Preload("Tags").Limit(limit).Offset(offset).Find(&deals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, count, nil
}

// GetByOwner retrieves a deal by ID within the owner's scope
func (r *DealRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).Preload("Tags").
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&deal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

// Update saves deal fields and optionally replaces the tag set
func (r *DealRepository) Update(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(deal).Error; err != nil {
			return fmt.Errorf("failed to update deal: %w", err)
		}
		return replaceTags(tx, deal, "Tags", tagIDs)
	})
}

// DeleteByOwner removes a deal within the owner's scope
func (r *DealRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Deal{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete deal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
