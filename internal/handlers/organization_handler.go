package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/middleware"
	"crm-service/internal/services"
)

// OrganizationHandler handles organization CRUD and API key rotation
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// List returns organizations, paginated
// GET /api/v1/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	orgs, count, err := h.orgService.List(c.Request.Context(), q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	ListResponse(c, q, count, orgs)
}

// Create creates a new organization owned by the caller
// POST /api/v1/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), userID, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

// Get returns a single organization
// GET /api/v1/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	org, err := h.orgService.Get(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// Update applies a partial update to an organization
// PATCH /api/v1/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	var req services.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), id, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// Delete removes an organization
// DELETE /api/v1/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found", nil)
		return
	}

	if err := h.orgService.Delete(c.Request.Context(), id); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegenerateKey rotates the organization's API key. Only the owner may
// rotate; the old key stops working immediately.
// POST /api/v1/organizations/:id/regenerate-key
func (h *OrganizationHandler) RegenerateKey(c *gin.Context) {
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

	org, err := h.orgService.RegenerateKey(c.Request.Context(), userID, id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}
