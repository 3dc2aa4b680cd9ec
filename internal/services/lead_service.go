package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crm-service/internal/mail"
	"crm-service/internal/models"
	natsclient "crm-service/internal/nats"
	"crm-service/internal/repository"
)

// LeadStore is the persistence interface required by LeadService. The
// postCreate hook passed to Create runs inside the insert transaction.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID, postCreate func(*models.Lead) error) error
	List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Lead, int64, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

// OrganizationFinder resolves the organization stamped onto new records
type OrganizationFinder interface {
	FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error)
}

var leadFilterColumns = map[string]string{
	"status":       "status",
	"organization": "organization_id",
}

// LeadService handles lead business logic: ownership stamping, the welcome
// email hook and CSV import.
type LeadService struct {
	leads  LeadStore
	orgs   OrganizationFinder
	mailer mail.Mailer
	events *natsclient.Client
	logger *logrus.Entry
}

// NewLeadService creates a new lead service
func NewLeadService(leads LeadStore, orgs OrganizationFinder, mailer mail.Mailer, events *natsclient.Client, logger *logrus.Logger) *LeadService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LeadService{
		leads:  leads,
		orgs:   orgs,
		mailer: mailer,
		events: events,
		logger: logger.WithField("component", "lead_service"),
	}
}

// CreateLeadRequest is the client payload for lead creation. Owner and
// organization are deliberately absent: they are stamped server-side.
type CreateLeadRequest struct {
	FirstName string      `json:"first_name" binding:"required,max=100"`
	LastName  string      `json:"last_name" binding:"required,max=100"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Status    string      `json:"status"`
	Source    string      `json:"source"`
	TagIDs    []uuid.UUID `json:"tag_ids"`
}

// UpdateLeadRequest is the client payload for partial lead updates
type UpdateLeadRequest struct {
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Email     *string     `json:"email"`
	Phone     *string     `json:"phone"`
	Status    *string     `json:"status"`
	Source    *string     `json:"source"`
	TagIDs    []uuid.UUID `json:"tag_ids"`
}

// Create persists a new lead owned by ownerID. The owner and organization
// fields are stamped regardless of anything the client sent, and the welcome
// email hook runs inside the same transaction: if dispatch fails, the lead
// is not created.
func (s *LeadService) Create(ctx context.Context, ownerID uuid.UUID, req CreateLeadRequest) (*models.Lead, error) {
	status := req.Status
	if status == "" {
		status = models.LeadStatusNew
	}
	if !models.IsValidLeadStatus(status) {
		return nil, NewValidationError("status", fmt.Sprintf("%q is not a valid choice", req.Status))
	}

	org, err := s.stampOrganization(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		OwnerID:   ownerID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    status,
		Source:    req.Source,
	}
	if org != nil {
		lead.OrganizationID = &org.ID
	}

	err = s.leads.Create(ctx, lead, req.TagIDs, func(created *models.Lead) error {
		return s.sendWelcomeEmail(ctx, created, org)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}

	s.publishCreated(lead)
	return lead, nil
}

// sendWelcomeEmail dispatches the fixed welcome message for a newly created
// lead with a non-empty email. It never fires for updates. A transport error
// propagates to the caller and aborts the creation.
func (s *LeadService) sendWelcomeEmail(ctx context.Context, lead *models.Lead, org *models.Organization) error {
	if lead.Email == "" {
		return nil
	}

	orgName := "None"
	if org != nil {
		orgName = org.Name
	}

	subject := fmt.Sprintf("Welcome, %s!", lead.FirstName)
	body := fmt.Sprintf(`Hi %s,

Thanks for being interested in our Organization: %s.
We have added you to our CRM and an agent will contact you shortly.

Best,
The CRM Team
`, lead.FirstName, orgName)

	if err := s.mailer.Send(ctx, lead.Email, subject, body); err != nil {
		return fmt.Errorf("welcome email dispatch failed: %w", err)
	}
	return nil
}

// List returns a page of the owner's leads
func (s *LeadService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]models.Lead, int64, error) {
	opts, err := buildListOptions(q, leadFilterColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.leads.List(ctx, ownerID, opts)
}

// Get returns a single lead within the owner's visibility scope
func (s *LeadService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Lead, error) {
	lead, err := s.leads.GetByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lead, nil
}

// Update applies a partial update to a lead within the owner's scope.
// Owner and organization are untouched, and no email is ever sent.
func (s *LeadService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !models.IsValidLeadStatus(*req.Status) {
			return nil, NewValidationError("status", fmt.Sprintf("%q is not a valid choice", *req.Status))
		}
		lead.Status = *req.Status
	}
	if req.FirstName != nil {
		lead.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lead.LastName = *req.LastName
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}

	if err := s.leads.Update(ctx, lead, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("tag_ids", "Unknown tag id.")
		}
		return nil, err
	}
	return lead, nil
}

// Delete removes a lead within the owner's scope
func (s *LeadService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.leads.DeleteByOwner(ctx, ownerID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ImportResult summarizes a CSV import run
type ImportResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ImportCSV creates one lead per data row of the uploaded file. The header
// row names the columns; first_name, last_name and email are read and any
// missing column yields an empty string. Status is always "new". Rows are
// independent: a failing row (including a failing welcome email) is skipped
// and counted, and the import continues.
func (s *LeadService) ImportCSV(ctx context.Context, ownerID uuid.UUID, file io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewValidationError("file", "File is empty or not valid CSV.")
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	result := &ImportResult{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewValidationError("file", fmt.Sprintf("Malformed CSV: %v", err))
		}

		_, err = s.Create(ctx, ownerID, CreateLeadRequest{
			FirstName: cell(row, "first_name"),
			LastName:  cell(row, "last_name"),
			Email:     cell(row, "email"),
			Status:    models.LeadStatusNew,
		})
		if err != nil {
			s.logger.WithError(err).Warn("skipping CSV row")
			result.Failed++
			continue
		}
		result.Created++
	}
	return result, nil
}

func (s *LeadService) publishCreated(lead *models.Lead) {
	event := &natsclient.RecordCreatedEvent{
		RecordID: lead.ID.String(),
		OwnerID:  lead.OwnerID.String(),
	}
	if lead.OrganizationID != nil {
		event.OrganizationID = lead.OrganizationID.String()
	}
	s.events.PublishRecordCreated(natsclient.EventLeadCreated, event)
}

// stampOrganization returns the owner's first owned organization, or nil
// when the owner has none.
func (s *LeadService) stampOrganization(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.FirstOwnedBy(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve owned organization: %w", err)
	}
	return org, nil
}
