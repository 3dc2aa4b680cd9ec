package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/middleware"
	"crm-service/internal/services"
)

// ActivityHandler handles activity CRUD
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns the caller's activities, paginated
// GET /api/v1/activities
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	q := parseListQuery(c, "activity_type")
	activities, count, err := h.activityService.List(c.Request.Context(), userID, q)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	ListResponse(c, q, count, activities)
}

// Create logs a new activity for the caller
// POST /api/v1/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	activity, err := h.activityService.Create(c.Request.Context(), userID, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// Get returns a single activity
// GET /api/v1/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
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

	activity, err := h.activityService.Get(c.Request.Context(), userID, id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Update applies a partial update to an activity
// PATCH /api/v1/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
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

	var req services.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	activity, err := h.activityService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Delete removes an activity
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
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

	if err := h.activityService.Delete(c.Request.Context(), userID, id); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
