package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythmic-hub/enroll-api/internal/service"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/response"
)

// SelectionHandler exposes the selection ledger endpoints.
type SelectionHandler struct {
	selections *service.SelectionService
}

// NewSelectionHandler constructs SelectionHandler.
func NewSelectionHandler(selections *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selections: selections}
}

// List godoc
// @Summary List the caller's selections
// @Description Querying an email other than the token's returns an empty list.
// @Tags Selections
// @Produce json
// @Param email query string true "Owner email"
// @Success 200 {object} response.Envelope
// @Router /selections [get]
func (h *SelectionHandler) List(c *gin.Context) {
	selections, err := h.selections.ListByEmail(c.Request.Context(), c.Query("email"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selections, nil)
}

// Create godoc
// @Summary Select a class for enrollment
// @Tags Selections
// @Accept json
// @Produce json
// @Param payload body service.SelectClassRequest true "Selection payload"
// @Success 201 {object} response.Envelope
// @Router /selections [post]
func (h *SelectionHandler) Create(c *gin.Context) {
	var req service.SelectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	selection, err := h.selections.Select(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, selection)
}

// Delete godoc
// @Summary Remove one of the caller's selections
// @Tags Selections
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} response.Envelope
// @Router /selections/{id} [delete]
func (h *SelectionHandler) Delete(c *gin.Context) {
	removed, err := h.selections.Remove(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
