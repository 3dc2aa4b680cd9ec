package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"crm-service/internal/middleware"
	"crm-service/internal/services"
)

// LeadHandler handles lead CRUD and CSV import
type LeadHandler struct {
	leadService   *services.LeadService
	leadsImported *prometheus.CounterVec
}

// NewLeadHandler creates a new lead handler. leadsImported counts CSV
// import rows by outcome and may be nil.
func NewLeadHandler(leadService *services.LeadService, leadsImported *prometheus.CounterVec) *LeadHandler {
	return &LeadHandler{leadService: leadService, leadsImported: leadsImported}
}

// List returns the caller's leads, paginated
// GET /api/v1/leads
func (h *LeadHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	q := parseListQuery(c, "status", "organization")
	leads, count, err := h.leadService.List(c.Request.Context(), userID, q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	ListResponse(c, q, count, leads)
}

// Create creates a new lead owned by the caller
// POST /api/v1/leads
func (h *LeadHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), userID, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// Get returns a single lead
// GET /api/v1/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	lead, err := h.leadService.Get(c.Request.Context(), userID, id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Update applies a partial update to a lead
// PATCH /api/v1/leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	var req services.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	lead, err := h.leadService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Delete removes a lead
// DELETE /api/v1/leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), userID, id); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadCSV bulk-creates leads from an uploaded CSV file. The multipart
// field name is "file"; rows that fail are skipped and counted.
// POST /api/v1/leads/upload_csv
func (h *LeadHandler) UploadCSV(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ValidationErrorResponse(c, map[string]string{"file": "No file was submitted."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}
	defer file.Close()

	result, err := h.leadService.ImportCSV(c.Request.Context(), userID, file)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	if h.leadsImported != nil {
		h.leadsImported.WithLabelValues("created").Add(float64(result.Created))
		h.leadsImported.WithLabelValues("failed").Add(float64(result.Failed))
	}

	SuccessResponse(c, http.StatusCreated, "Import complete", result)
}
