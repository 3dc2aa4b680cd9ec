package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/middleware"
	"crm-service/internal/services"
)

// ContactHandler handles contact CRUD
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List returns the caller's contacts, paginated
// GET /api/v1/contacts
func (h *ContactHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	q := parseListQuery(c, "organization", "email")
	contacts, count, err := h.contactService.List(c.Request.Context(), userID, q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	ListResponse(c, q, count, contacts)
}

// Create creates a new contact owned by the caller
// POST /api/v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), userID, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// Get returns a single contact
// GET /api/v1/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
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

	contact, err := h.contactService.Get(c.Request.Context(), userID, id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Update applies a partial update to a contact
// PATCH /api/v1/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
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

	var req services.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Delete removes a contact
// DELETE /api/v1/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
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

	if err := h.contactService.Delete(c.Request.Context(), userID, id); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
