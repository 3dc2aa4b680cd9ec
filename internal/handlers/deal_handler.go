package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/middleware"
	"crm-service/internal/services"
)

// DealHandler handles deal CRUD
type DealHandler struct {
	dealService *services.DealService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealService *services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// List returns the caller's deals, paginated
// GET /api/v1/deals
func (h *DealHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	q := parseListQuery(c, "stage", "organization")
	deals, count, err := h.dealService.List(c.Request.Context(), userID, q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	ListResponse(c, q, count, deals)
}

// Create creates a new deal owned by the caller
// POST /api/v1/deals
func (h *DealHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	deal, err := h.dealService.Create(c.Request.Context(), userID, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// Get returns a single deal
// GET /api/v1/deals/:id
func (h *DealHandler) Get(c *gin.Context) {
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

	deal, err := h.dealService.Get(c.Request.Context(), userID, id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

// Update applies a partial update to a deal
// PATCH /api/v1/deals/:id
func (h *DealHandler) Update(c *gin.Context) {
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

	var req services.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	deal, err := h.dealService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

// Delete removes a deal
// DELETE /api/v1/deals/:id
func (h *DealHandler) Delete(c *gin.Context) {
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

	if err := h.dealService.Delete(c.Request.Context(), userID, id); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
