package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// ActivityStore is the persistence interface required by ActivityService
type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]models.Activity, int64, error)
	GetByUser(ctx context.Context, userID, id uuid.UUID) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	DeleteByUser(ctx context.Context, userID, id uuid.UUID) error
}

var activityFilterColumns = map[string]string{
	"activity_type": "activity_type",
}

// ActivityService handles activity business logic. Activities are scoped to
// the user who logged them.
type ActivityService struct {
	activities ActivityStore
	logger     *logrus.Entry
}

// NewActivityService creates a new activity service
func NewActivityService(activities ActivityStore, logger *logrus.Logger) *ActivityService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ActivityService{
		activities: activities,
		logger:     logger.WithField("component", "activity_service"),
	}
}

// CreateActivityRequest is the client payload for activity creation
type CreateActivityRequest struct {
	ActivityType string     `json:"activity_type" binding:"required"`
	Summary      string     `json:"summary" binding:"required,max=255"`
	Details      string     `json:"details"`
	ContactID    *uuid.UUID `json:"contact"`
	LeadID       *uuid.UUID `json:"lead"`
}

// UpdateActivityRequest is the client payload for partial activity updates.
// The date is stamped at creation and cannot be changed.
type UpdateActivityRequest struct {
	ActivityType *string    `json:"activity_type"`
	Summary      *string    `json:"summary"`
	Details      *string    `json:"details"`
	ContactID    *uuid.UUID `json:"contact"`
	LeadID       *uuid.UUID `json:"lead"`
}

// Create logs a new activity for userID
func (s *ActivityService) Create(ctx context.Context, userID uuid.UUID, req CreateActivityRequest) (*models.Activity, error) {
	if !models.IsValidActivityType(req.ActivityType) {
		return nil, NewValidationError("activity_type", fmt.Sprintf("%q is not a valid choice", req.ActivityType))
	}

	activity := &models.Activity{
		UserID:       userID,
		ActivityType: req.ActivityType,
		Summary:      req.Summary,
		Details:      req.Details,
		ContactID:    req.ContactID,
		LeadID:       req.LeadID,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// List returns a page of the user's activities
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]models.Activity, int64, error) {
	opts, err := buildListOptions(q, activityFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.activities.List(ctx, userID, opts)
}

// Get returns a single activity within the user's visibility scope
func (s *ActivityService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.activities.GetByUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return activity, nil
}

// Update applies a partial update to an activity within the user's scope
func (s *ActivityService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateActivityRequest) (*models.Activity, error) {
	activity, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.ActivityType != nil {
		if !models.IsValidActivityType(*req.ActivityType) {
			return nil, NewValidationError("activity_type", fmt.Sprintf("%q is not a valid choice", *req.ActivityType))
		}
		activity.ActivityType = *req.ActivityType
	}
	if req.Summary != nil {
		activity.Summary = *req.Summary
	}
	if req.Details != nil {
		activity.Details = *req.Details
	}
	if req.ContactID != nil {
		activity.ContactID = req.ContactID
	}
	if req.LeadID != nil {
		activity.LeadID = req.LeadID
	}

	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Delete removes an activity within the user's scope
func (s *ActivityService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.activities.DeleteByUser(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
