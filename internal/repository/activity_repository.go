package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

var activityOrderings = map[string]string{
	"date": "date",
}

var activitySearchColumns = []string{"summary", "details"}

// ActivityRepository handles activity log database operations. Activities are
// scoped to the user who logged them.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// List returns a page of activities logged by userID
func (r *ActivityRepository) List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.Activity, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Activity{}).Where("user_id = ?", userID)
	q = applyFilters(q, opts.Filters)
	q = applySearch(q, opts.Search, activitySearchColumns)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	q = applyOrdering(q, opts.Ordering, "date DESC", activityOrderings)
	limit, offset := opts.limitOffset()

	var activities []models.Activity
	if err := q.Limit(limit).Offset(offset).Find(&activities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, count, nil
}

// GetByUser retrieves an activity by ID within the user's scope
func (r *ActivityRepository) GetByUser(ctx context.Context, userID, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&activity).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

// Update saves activity fields
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Save(activity).Error; err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

// DeleteByUser removes an activity within the user's scope
func (r *ActivityRepository) DeleteByUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Activity{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete activity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
