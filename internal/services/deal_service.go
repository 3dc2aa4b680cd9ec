package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crm-service/internal/models"
	natsclient "crm-service/internal/nats"
	"crm-service/internal/repository"
)

// DealStore is the persistence interface required by DealService
type DealStore interface {
	Create(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Deal, int64, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

// ContactFinder resolves contacts referenced by deals
type ContactFinder interface {
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error)
}

var dealFilterColumns = map[string]string{
	"stage":        "stage",
	"organization": "organization_id",
}

// DealService handles deal business logic
type DealService struct {
	deals    DealStore
	contacts ContactFinder
	orgs     OrganizationFinder
	events   *natsclient.Client
	logger   *logrus.Entry
}

// NewDealService creates a new deal service
func NewDealService(deals DealStore, contacts ContactFinder, orgs OrganizationFinder, events *natsclient.Client, logger *logrus.Logger) *DealService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DealService{
		deals:    deals,
		contacts: contacts,
		orgs:     orgs,
		events:   events,
		logger:   logger.WithField("component", "deal_service"),
	}
}

// CreateDealRequest is the client payload for deal creation
type CreateDealRequest struct {
	Name        string      `json:"name" binding:"required,max=200"`
	ContactID   uuid.UUID   `json:"contact" binding:"required"`
	Value       float64     `json:"value"`
	Stage       string      `json:"stage"`
	Probability int         `json:"probability"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// UpdateDealRequest is the client payload for partial deal updates
type UpdateDealRequest struct {
	Name        *string     `json:"name"`
	ContactID   *uuid.UUID  `json:"contact"`
	Value       *float64    `json:"value"`
	Stage       *string     `json:"stage"`
	Probability *int        `json:"probability"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// Create persists a new deal owned by ownerID. The referenced contact must
// exist within the owner's visibility scope.
func (s *DealService) Create(ctx context.Context, ownerID uuid.UUID, req CreateDealRequest) (*models.Deal, error) {
	stage := req.Stage
	if stage == "" {
		stage = models.DealStageProspecting
	}
	if !models.IsValidDealStage(stage) {
		return nil, NewValidationError("stage", fmt.Sprintf("%q is not a valid choice", req.Stage))
	}

	if _, err := s.contacts.GetByOwner(ctx, ownerID, req.ContactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("contact", "Unknown contact id.")
		}
		return nil, err
	}

	deal := &models.Deal{
		OwnerID:     ownerID,
		ContactID:   req.ContactID,
		Name:        req.Name,
		Value:       req.Value,
		Stage:       stage,
		Probability: req.Probability,
	}

	org, err := s.orgs.FirstOwnedBy(ctx, ownerID)
	if err == nil {
		deal.OrganizationID = &org.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve owned organization: %w", err)
	}

	if deal.Stage == models.DealStageClosedWon || deal.Stage == models.DealStageClosedLost {
		now := time.Now().UTC()
		deal.ClosedAt = &now
	}

	if err := s.deals.Create(ctx, deal, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}

	event := &natsclient.RecordCreatedEvent{RecordID: deal.ID.String(), OwnerID: ownerID.String()}
	if deal.OrganizationID != nil {
		event.OrganizationID = deal.OrganizationID.String()
	}
	s.events.PublishRecordCreated(natsclient.EventDealCreated, event)
	return deal, nil
}

// List returns a page of the owner's deals
func (s *DealService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]models.Deal, int64, error) {
	opts, err := buildListOptions(q, dealFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.deals.List(ctx, ownerID, opts)
}

// Get returns a single deal within the owner's visibility scope
func (s *DealService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Deal, error) {
	deal, err := s.deals.GetByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return deal, nil
}

// Update applies a partial update to a deal within the owner's scope. Moving
// a deal into a closed stage stamps ClosedAt once.
func (s *DealService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateDealRequest) (*models.Deal, error) {
	deal, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Stage != nil {
		if !models.IsValidDealStage(*req.Stage) {
			return nil, NewValidationError("stage", fmt.Sprintf("%q is not a valid choice", *req.Stage))
		}
		deal.Stage = *req.Stage
	}
	if req.ContactID != nil {
		if _, err := s.contacts.GetByOwner(ctx, ownerID, *req.ContactID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("contact", "Unknown contact id.")
			}
			return nil, err
		}
		deal.ContactID = *req.ContactID
	}
	if req.Name != nil {
		deal.Name = *req.Name
	}
	if req.Value != nil {
		deal.Value = *req.Value
	}
	if req.Probability != nil {
		deal.Probability = *req.Probability
	}

	closed := deal.Stage == models.DealStageClosedWon || deal.Stage == models.DealStageClosedLost
	if closed && deal.ClosedAt == nil {
		now := time.Now().UTC()
		deal.ClosedAt = &now
	} else if !closed {
		deal.ClosedAt = nil
	}

	if err := s.deals.Update(ctx, deal, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}
	return deal, nil
}

// Delete removes a deal within the owner's scope
func (s *DealService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.deals.DeleteByOwner(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
