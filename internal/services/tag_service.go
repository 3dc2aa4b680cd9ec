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

// TagStore is the persistence interface required by TagService
type TagStore interface {
	Create(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context, opts repository.ListOptions) ([]models.Tag, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagService handles tag business logic. Tags are global: every
// authenticated user sees and may modify the same set.
type TagService struct {
	tags   TagStore
	logger *logrus.Entry
}

// NewTagService creates a new tag service
func NewTagService(tags TagStore, logger *logrus.Logger) *TagService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TagService{
		tags:   tags,
		logger: logger.WithField("component", "tag_service"),
	}
}

// CreateTagRequest is the client payload for tag creation
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color"`
}

// UpdateTagRequest is the client payload for partial tag updates
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Create persists a new tag. Names are unique system-wide.
func (s *TagService) Create(ctx context.Context, req CreateTagRequest) (*models.Tag, error) {
	tag := &models.Tag{Name: req.Name}
	if req.Color != "" {
		tag.Color = req.Color
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("name", "tag with this name already exists.")
		}
		return nil, err
	}
	return tag, nil
}

// List returns a page of tags ordered by name
func (s *TagService) List(ctx context.Context, q ListQuery) ([]models.Tag, int64, error) {
	opts, err := buildListOptions(q, nil)
	if err != nil {
		return nil, 0, err
	}
	return s.tags.List(ctx, opts)
}

// Get returns a single tag
func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tag, nil
}

// Update applies a partial update to a tag
func (s *TagService) Update(ctx context.Context, id uuid.UUID, req UpdateTagRequest) (*models.Tag, error) {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tag.Name = *req.Name
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}

	if err := s.tags.Update(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("name", "tag with this name already exists.")
		}
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag and its associations
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
