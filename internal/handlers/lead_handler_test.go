package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm-service/internal/middleware"
	"crm-service/internal/models"
	"crm-service/internal/repository"
	"crm-service/internal/services"
)

type memLeadStore struct {
	leads map[uuid.UUID]*models.Lead
}

func (s *memLeadStore) Create(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID, postCreate func(*models.Lead) error) error {
	lead.ID = uuid.New()
	if postCreate != nil {
		if err := postCreate(lead); err != nil {
			return err
		}
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *memLeadStore) List(ctx context.Context, ownerID uuid.UUID, opts repository.ListOptions) ([]models.Lead, int64, error) {
	var out []models.Lead
	for _, lead := range s.leads {
		if lead.OwnerID == ownerID {
			out = append(out, *lead)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memLeadStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Lead, error) {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *memLeadStore) Update(ctx context.Context, lead *models.Lead, tagIDs []uuid.UUID) error {
	s.leads[lead.ID] = lead
	return nil
}

func (s *memLeadStore) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(s.leads, id)
	return nil
}

type noOrgFinder struct{}

func (noOrgFinder) FirstOwnedBy(ctx context.Context, ownerID uuid.UUID) (*models.Organization, error) {
	return nil, gorm.ErrRecordNotFound
}

type discardMailer struct{}

func (discardMailer) Send(ctx context.Context, to, subject, body string) error { return nil }

func setupLeadRouter(userID uuid.UUID) (*gin.Engine, *memLeadStore) {
	return setupLeadRouterWithCounter(userID, nil)
}

func setupLeadRouterWithCounter(userID uuid.UUID, imported *prometheus.CounterVec) (*gin.Engine, *memLeadStore) {
	store := &memLeadStore{leads: make(map[uuid.UUID]*models.Lead)}
	svc := services.NewLeadService(store, noOrgFinder{}, discardMailer{}, nil, nil)
	handler := NewLeadHandler(svc, imported)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	leads := router.Group("/api/v1/leads")
	{
		leads.GET("", handler.List)
		leads.POST("", handler.Create)
		leads.POST("/upload_csv", handler.UploadCSV)
		leads.GET("/:id", handler.Get)
	}
	return router, store
}

func TestLeadCreate_IgnoresClientOwner(t *testing.T) {
	userID := uuid.New()
	router, store := setupLeadRouter(userID)

	// The payload tries to set owner and organization; both are stamped
	// server-side and the client values are discarded.
	body := `{"first_name":"Jane","last_name":"Doe","owner":"` + uuid.NewString() + `","organization":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.leads, 1)
	for _, lead := range store.leads {
		assert.Equal(t, userID, lead.OwnerID)
		assert.Nil(t, lead.OrganizationID)
	}
}

func TestLeadGet_UnknownID(t *testing.T) {
	router, _ := setupLeadRouter(uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadUploadCSV(t *testing.T) {
	router, store := setupLeadRouter(uuid.New())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("first_name,last_name,email\nJane,Doe,jane@example.com\nJohn,Smith,john@example.com\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/upload_csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.leads, 2)

	var resp struct {
		Data services.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Created)
	assert.Equal(t, 0, resp.Data.Failed)
}

func TestLeadUploadCSV_CountsRows(t *testing.T) {
	imported := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leads_imported_total",
		Help: "Lead rows processed by CSV import, by outcome",
	}, []string{"outcome"})
	router, _ := setupLeadRouterWithCounter(uuid.New(), imported)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("first_name,last_name,email\nJane,Doe,jane@example.com\nJohn,Smith,john@example.com\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/upload_csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(2), testutil.ToFloat64(imported.WithLabelValues("created")))
	assert.Equal(t, float64(0), testutil.ToFloat64(imported.WithLabelValues("failed")))
}

func TestLeadUploadCSV_MissingFile(t *testing.T) {
	router, _ := setupLeadRouter(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/upload_csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadList_Envelope(t *testing.T) {
	userID := uuid.New()
	router, store := setupLeadRouter(userID)

	store.leads[uuid.New()] = &models.Lead{ID: uuid.New(), OwnerID: userID, FirstName: "Jane"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "count")
	assert.Contains(t, resp, "next")
	assert.Contains(t, resp, "previous")
	assert.Contains(t, resp, "results")
}
