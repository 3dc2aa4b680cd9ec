package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm-service/internal/models"
	"crm-service/internal/repository"
)

type fakeDealStore struct {
	deals map[uuid.UUID]*models.Deal
}

func newFakeDealStore() *fakeDealStore {
	return &fakeDealStore{deals: make(map[uuid.UUID]*models.Deal)}
}

func (s *fakeDealStore) Create(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error {
	deal.ID = uuid.New()
	s.deals[deal.ID] = deal
	return nil
}

func (s *fakeDealStore) List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Deal, int64, error) {
	var out []models.Deal
	for _, deal := range s.deals {
		if deal.OwnerID == ownerID {
			out = append(out, *deal)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeDealStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Deal, error) {
	deal, ok := s.deals[id]
	if !ok || deal.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return deal, nil
}

func (s *fakeDealStore) Update(ctx context.Context, deal *models.Deal, tagIDs []uuid.UUID) error {
	s.deals[deal.ID] = deal
	return nil
}

func (s *fakeDealStore) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	deal, ok := s.deals[id]
	if !ok || deal.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(s.deals, id)
	return nil
}

// fakeContactFinder resolves a fixed set of contacts by owner
type fakeContactFinder struct {
	contacts map[uuid.UUID]*models.Contact
}

func (f *fakeContactFinder) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	contact, ok := f.contacts[id]
	if !ok || contact.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return contact, nil
}

func newTestDealService() (*DealService, uuid.UUID, uuid.UUID) {
	ownerID := uuid.New()
	contactID := uuid.New()

	contacts := &fakeContactFinder{contacts: map[uuid.UUID]*models.Contact{
		contactID: {ID: contactID, OwnerID: ownerID, FirstName: "Jane", LastName: "Doe"},
	}}
	orgs := &fakeOrgFinder{orgs: map[uuid.UUID]*models.Organization{}}
	svc := NewDealService(newFakeDealStore(), contacts, orgs, nil, nil)
	return svc, ownerID, contactID
}

func TestCreateDeal(t *testing.T) {
	svc, ownerID, contactID := newTestDealService()

	deal, err := svc.Create(context.Background(), ownerID, CreateDealRequest{
		Name:      "Big deal",
		ContactID: contactID,
		Value:     1500,
	})
	require.NoError(t, err)

	assert.Equal(t, ownerID, deal.OwnerID)
	assert.Equal(t, models.DealStageProspecting, deal.Stage)
	assert.Nil(t, deal.ClosedAt)
}

func TestCreateDeal_UnknownContact(t *testing.T) {
	svc, ownerID, _ := newTestDealService()

	_, err := svc.Create(context.Background(), ownerID, CreateDealRequest{
		Name:      "Big deal",
		ContactID: uuid.New(),
	})
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "contact", verr.Field)
}

func TestCreateDeal_ForeignContactRejected(t *testing.T) {
	svc, _, contactID := newTestDealService()

	// Another user's contact is outside the caller's scope
	_, err := svc.Create(context.Background(), uuid.New(), CreateDealRequest{
		Name:      "Big deal",
		ContactID: contactID,
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}

func TestCreateDeal_InvalidStage(t *testing.T) {
	svc, ownerID, contactID := newTestDealService()

	_, err := svc.Create(context.Background(), ownerID, CreateDealRequest{
		Name:      "Big deal",
		ContactID: contactID,
		Stage:     "daydreaming",
	})
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "stage", verr.Field)
}

func TestUpdateDeal_ClosingStampsClosedAt(t *testing.T) {
	svc, ownerID, contactID := newTestDealService()

	deal, err := svc.Create(context.Background(), ownerID, CreateDealRequest{
		Name:      "Big deal",
		ContactID: contactID,
	})
	require.NoError(t, err)
	require.Nil(t, deal.ClosedAt)

	stage := models.DealStageClosedWon
	updated, err := svc.Update(context.Background(), ownerID, deal.ID, UpdateDealRequest{Stage: &stage})
	require.NoError(t, err)
	assert.NotNil(t, updated.ClosedAt)

	// Reopening clears the close timestamp
	stage = models.DealStageNegotiation
	updated, err = svc.Update(context.Background(), ownerID, deal.ID, UpdateDealRequest{Stage: &stage})
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt)
}
