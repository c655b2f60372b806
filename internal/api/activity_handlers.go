package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"skillup-tracker/internal/model"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

// ActivityHandler exposes CRUD over the caller's learning activities.
type ActivityHandler struct {
	activities *service.ActivityService
}

func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List returns the caller's activities
// GET /api/activities/?status=&category=&date=&search=&ordering=
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, Unauthorized("missing or invalid authentication"))
		return
	}

	filter, appErr := parseActivityFilter(c)
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	activities, err := h.activities.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toActivityResponses(activities))
}

// Create logs a new activity
// POST /api/activities/
func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, Unauthorized("missing or invalid authentication"))
		return
	}

	var req CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activities.Create(c.Request.Context(), userID, service.ActivityInput{
		Topic:       req.Topic,
		Description: req.Description,
		CategoryID:  req.Category,
		Date:        req.Date,
		Status:      model.ActivityStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toActivityResponse(*activity))
}

// Get returns one activity
// GET /api/activities/:id/
func (h *ActivityHandler) Get(c *gin.Context) {
	userID, activityID, ok := h.target(c)
	if !ok {
		return
	}

	activity, err := h.activities.Get(c.Request.Context(), userID, activityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toActivityResponse(*activity))
}

// Replace overwrites an activity; omitted description and category are cleared
// PUT /api/activities/:id/
func (h *ActivityHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

// Patch applies a partial update
// PATCH /api/activities/:id/
func (h *ActivityHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

// Delete removes an activity
// DELETE /api/activities/:id/
func (h *ActivityHandler) Delete(c *gin.Context) {
	userID, activityID, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.activities.Delete(c.Request.Context(), userID, activityID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ActivityHandler) update(c *gin.Context, replace bool) {
	userID, activityID, ok := h.target(c)
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	if replace && req.Topic == nil {
		respondError(c, Validation("invalid request body", []FieldError{{Field: "topic", Message: "this field is required"}}))
		return
	}

	patch := service.ActivityPatch{
		Topic:       req.Topic,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.Status != nil {
		status := model.ActivityStatus(*req.Status)
		patch.Status = &status
	}
	switch {
	case req.Category.Set && req.Category.Value == nil:
		patch.ClearCategory = true
	case req.Category.Set:
		patch.CategoryID = req.Category.Value
	case replace:
		patch.ClearCategory = true
	}
	if replace && patch.Description == nil {
		empty := ""
		patch.Description = &empty
	}

	activity, err := h.activities.Update(c.Request.Context(), userID, activityID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toActivityResponse(*activity))
}

// target resolves the caller and the :id path parameter. Malformed ids are reported as
// missing activities.
func (h *ActivityHandler) target(c *gin.Context) (uint, uint, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, Unauthorized("missing or invalid authentication"))
		return 0, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, NotFound("activity"))
		return 0, 0, false
	}
	return userID, uint(id), true
}

func parseActivityFilter(c *gin.Context) (repository.ActivityFilter, *AppError) {
	var filter repository.ActivityFilter

	filter.Status = model.ActivityStatus(strings.TrimSpace(c.Query("status")))

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, Validation("invalid filter", []FieldError{{Field: "category", Message: "must be a category id"}})
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err := model.ParseDate(raw)
		if err != nil {
			return filter, Validation("invalid filter", []FieldError{{Field: "date", Message: "expected YYYY-MM-DD"}})
		}
		filter.Date = &day
	}

	filter.Search = strings.TrimSpace(c.Query("search"))

	if raw := strings.TrimSpace(c.Query("ordering")); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			if field = strings.TrimSpace(field); field != "" {
				filter.Ordering = append(filter.Ordering, field)
			}
		}
	}

	return filter, nil
}
