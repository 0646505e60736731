package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rhythmic-hub/enroll-api/internal/middleware"
	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/service"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/response"
)

// ClassHandler exposes the class catalog endpoints.
type ClassHandler struct {
	classes *service.ClassService
	metrics *service.MetricsService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, metrics *service.MetricsService) *ClassHandler {
	return &ClassHandler{classes: classes, metrics: metrics}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param status query string false "Filter by status (default approved)"
// @Param instructor query string false "Filter by instructor email"
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassFilter
	filter.Status = models.ClassStatus(c.DefaultQuery("status", string(models.ClassStatusApproved)))
	filter.InstructorEmail = c.Query("instructor")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classes, pagination, cacheHit, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheLookup(cacheHit)
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, classes, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Fetch one class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Submit a class for approval
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.SubmitClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.SubmitClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	class, err := h.classes.Submit(c.Request.Context(), claims.Email, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// UpdateStatus godoc
// @Summary Update class approval status
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/status [patch]
func (h *ClassHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateClassStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Feedback godoc
// @Summary Attach feedback to a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ClassFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/feedback [patch]
func (h *ClassHandler) Feedback(c *gin.Context) {
	var req service.ClassFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.UpsertFeedback(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}
