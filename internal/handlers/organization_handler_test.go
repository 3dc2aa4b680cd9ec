package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm-service/internal/middleware"
	"crm-service/internal/models"
	"crm-service/internal/repository"
	"crm-service/internal/services"
)

type memOrgStore struct {
	orgs map[uuid.UUID]*models.Organization
}

func (s *memOrgStore) Create(ctx context.Context, org *models.Organization) error {
	org.ID = uuid.New()
	s.orgs[org.ID] = org
	return nil
}

func (s *memOrgStore) List(ctx context.Context, opts repository.ListOptions) ([]models.Organization, int64, error) {
	var all []models.Organization
	for _, org := range s.orgs {
		all = append(all, *org)
	}
	count := int64(len(all))

	page, size := opts.Page, opts.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = repository.DefaultPageSize
	}
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], count, nil
}

func (s *memOrgStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, ok := s.orgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (s *memOrgStore) GetByAPIKey(ctx context.Context, key string) (*models.Organization, error) {
	for _, org := range s.orgs {
		if org.APIKey != nil && *org.APIKey == key {
			return org, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memOrgStore) FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error) {
	for _, org := range s.orgs {
		if org.OwnerID == ownerID {
			return org, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memOrgStore) Update(ctx context.Context, org *models.Organization) error {
	s.orgs[org.ID] = org
	return nil
}

func (s *memOrgStore) UpdateAPIKey(ctx context.Context, id uuid.UUID, key string) error {
	org, ok := s.orgs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	org.APIKey = &key
	return nil
}

func (s *memOrgStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.orgs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.orgs, id)
	return nil
}

func setupOrgRouter(userID uuid.UUID) (*gin.Engine, *memOrgStore) {
	store := &memOrgStore{orgs: make(map[uuid.UUID]*models.Organization)}
	svc := services.NewOrganizationService(store, nil)
	handler := NewOrganizationHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	orgs := router.Group("/api/v1/organizations")
	{
		orgs.GET("", handler.List)
		orgs.POST("", handler.Create)
	}
	return router, store
}

func TestOrganizationList_Envelope(t *testing.T) {
	router, store := setupOrgRouter(uuid.New())

	store.orgs[uuid.New()] = &models.Organization{ID: uuid.New(), Name: "Acme Corp", OwnerID: uuid.New()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "count")
	assert.Contains(t, resp, "next")
	assert.Contains(t, resp, "previous")
	assert.Contains(t, resp, "results")
	assert.Equal(t, "1", string(resp["count"]))
}

func TestOrganizationList_PageSize(t *testing.T) {
	router, store := setupOrgRouter(uuid.New())

	for i := 0; i < 3; i++ {
		id := uuid.New()
		store.orgs[id] = &models.Organization{ID: id, Name: "Org", OwnerID: uuid.New()}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations?page_size=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int64             `json:"count"`
		Next    *string           `json:"next"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.Count)
	assert.Len(t, resp.Results, 2)
	require.NotNil(t, resp.Next)
	assert.Contains(t, *resp.Next, "page=2")
}
