package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// fakeLeadStore keeps leads in memory. Create mirrors the real store's
// transactional contract: a failing postCreate hook discards the insert.
type fakeLeadStore struct {
	leads map[uuid.UUID]*models.Lead
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: make(map[uuid.UUID]*models.Lead)}
}

func (s *fakeLeadStore) Create(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID, postCreate func(*models.Lead) error) error {
	lead.ID = uuid.New()
	if postCreate != nil {
		if err := postCreate(lead); err != nil {
			return err
		}
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *fakeLeadStore) List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Lead, int64, error) {
	var out []models.Lead
	for _, lead := range s.leads {
		if lead.OwnerID == ownerID {
			out = append(out, *lead)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeLeadStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Lead, error) {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *fakeLeadStore) Update(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID) error {
	s.leads[lead.ID] = lead
	return nil
}

func (s *fakeLeadStore) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(s.leads, id)
	return nil
}

// fakeOrgFinder returns a fixed organization per owner
type fakeOrgFinder struct {
	orgs map[uuid.UUID]*models.Organization
}

func (f *fakeOrgFinder) FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error) {
	org, ok := f.orgs[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

// recordingMailer captures sends and optionally fails
type recordingMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestLeadService() (*LeadService, *fakeLeadStore, *fakeOrgFinder, *recordingMailer, uuid.UUID) {
	ownerID := uuid.New()
	store := newFakeLeadStore()
	orgs := &fakeOrgFinder{orgs: map[uuid.UUID]*models.Organization{
		ownerID: {ID: uuid.New(), Name: "Acme Corp", OwnerID: ownerID},
	}}
	mailer := &recordingMailer{}
	svc := NewLeadService(store, orgs, mailer, nil, nil)
	return svc, store, orgs, mailer, ownerID
}

func TestCreateLead_StampsOwnerAndOrganization(t *testing.T) {
	svc, _, orgs, _, ownerID := newTestLeadService()

	lead, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ownerID, lead.OwnerID)
	require.NotNil(t, lead.OrganizationID)
	assert.Equal(t, orgs.orgs[ownerID].ID, *lead.OrganizationID)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
}

func TestCreateLead_NoOwnedOrganization(t *testing.T) {
	svc, _, _, _, _ := newTestLeadService()
	stranger := uuid.New()

	lead, err := svc.Create(context.Background(), stranger, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Nil(t, lead.OrganizationID)
}

func TestCreateLead_SendsWelcomeEmail(t *testing.T) {
	svc, _, _, mailer, ownerID := newTestLeadService()

	_, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "jane@example.com", msg.to)
	assert.Equal(t, "Welcome, Jane!", msg.subject)
	assert.Contains(t, msg.body, "Hi Jane,")
	assert.Contains(t, msg.body, "our Organization: Acme Corp.")
	assert.Contains(t, msg.body, "The CRM Team")
}

func TestCreateLead_WelcomeEmailWithoutOrganization(t *testing.T) {
	svc, _, _, mailer, _ := newTestLeadService()
	stranger := uuid.New()

	_, err := svc.Create(context.Background(), stranger, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "our Organization: None.")
}

func TestCreateLead_NoEmailNoMessage(t *testing.T) {
	svc, _, _, mailer, ownerID := newTestLeadService()

	_, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestCreateLead_EmailFailureAbortsCreation(t *testing.T) {
	svc, store, _, mailer, ownerID := newTestLeadService()
	mailer.err = errors.New("smtp unreachable")

	_, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.Error(t, err)
	assert.Empty(t, store.leads)
}

func TestCreateLead_InvalidStatus(t *testing.T) {
	svc, _, _, _, ownerID := newTestLeadService()

	_, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Status:    "on-fire",
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}

func TestUpdateLead_NeverSendsEmail(t *testing.T) {
	svc, _, _, mailer, ownerID := newTestLeadService()

	lead, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	status := models.LeadStatusContacted
	_, err = svc.Update(context.Background(), ownerID, lead.ID, UpdateLeadRequest{Status: &status})
	require.NoError(t, err)

	assert.Len(t, mailer.sent, 1)
}

func TestGetLead_OtherOwnerNotFound(t *testing.T) {
	svc, _, _, _, ownerID := newTestLeadService()

	lead, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLead_OtherOwnerNotFound(t *testing.T) {
	svc, store, _, _, ownerID := newTestLeadService()

	lead, err := svc.Create(context.Background(), ownerID, CreateLeadRequest{
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, store.leads, 1)
}

func TestImportCSV(t *testing.T) {
	svc, store, _, mailer, ownerID := newTestLeadService()

	csvData := "first_name,last_name,email\n" +
		"Jane,Doe,jane@example.com\n" +
		"John,Smith,john@example.com\n"

	result, err := svc.ImportCSV(context.Background(), ownerID, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, store.leads, 2)
	assert.Len(t, mailer.sent, 2)

	for _, lead := range store.leads {
		assert.Equal(t, models.LeadStatusNew, lead.Status)
		assert.Equal(t, ownerID, lead.OwnerID)
	}
}

func TestImportCSV_MissingColumn(t *testing.T) {
	svc, store, _, mailer, ownerID := newTestLeadService()

	csvData := "first_name,last_name\n" +
		"Jane,Doe\n"

	result, err := svc.ImportCSV(context.Background(), ownerID, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Len(t, store.leads, 1)
	// No email column means no welcome message
	assert.Empty(t, mailer.sent)
}

func TestImportCSV_SkipsFailingRows(t *testing.T) {
	svc, _, _, mailer, ownerID := newTestLeadService()
	mailer.err = errors.New("smtp unreachable")

	csvData := "first_name,last_name,email\n" +
		"Jane,Doe,jane@example.com\n" +
		"John,Smith,\n"

	result, err := svc.ImportCSV(context.Background(), ownerID, strings.NewReader(csvData))
	require.NoError(t, err)

	// Jane's welcome email fails so her row is skipped; John has no email
	// and imports cleanly.
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
}

func TestImportCSV_EmptyFile(t *testing.T) {
	svc, _, _, _, ownerID := newTestLeadService()

	_, err := svc.ImportCSV(context.Background(), ownerID, strings.NewReader(""))
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
