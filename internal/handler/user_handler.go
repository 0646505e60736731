package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/service"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/response"
)

// UserHandler exposes user registration and the role directory.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param search query string false "Search email or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Register godoc
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.RegisterUserRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Role godoc
// @Summary Resolve the caller's role
// @Description Querying an email other than the token's returns the non-admin sentinel.
// @Tags Users
// @Produce json
// @Param email query string true "Email to resolve"
// @Success 200 {object} response.Envelope
// @Router /users/role [get]
func (h *UserHandler) Role(c *gin.Context) {
	lookup, err := h.users.RoleByEmail(c.Request.Context(), c.Query("email"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"admin": lookup.Admin()}
	if !lookup.Denied {
		payload["role"] = lookup.Role
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// UpdateRole godoc
// @Summary Update a user's role
// @Tags Users
// @Produce json
// @Param id query string true "User ID"
// @Param role query string true "New role"
// @Success 200 {object} response.Envelope
// @Router /users/roleUpdate [patch]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	user, err := h.users.UpdateRole(c.Request.Context(), c.Query("id"), models.UserRole(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
