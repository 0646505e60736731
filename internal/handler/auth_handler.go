package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/service"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/response"
)

// AuthHandler exposes token issuance.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// IssueToken godoc
// @Summary Issue a bearer token for the given identity
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.TokenRequest true "Identity claims"
// @Success 200 {object} response.Envelope
// @Router /jwt [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	token, err := h.auth.IssueToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}
