package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/service"
)

type stubUserReader struct {
	role models.UserRole
}

func (s *stubUserReader) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.role == "" {
		return nil, sql.ErrNoRows
	}
	return &models.User{Email: email, Role: s.role}, nil
}

func newGuardedRouter(t *testing.T, authService *service.AuthService, roles ...models.UserRole) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reached := false
	router := gin.New()
	handlers := []gin.HandlerFunc{JWT(authService)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	router.GET("/guarded", handlers...)
	return router, &reached
}

func issueToken(t *testing.T, authService *service.AuthService, email string) string {
	t.Helper()
	resp, err := authService.IssueToken(context.Background(), models.TokenRequest{Email: email})
	require.NoError(t, err)
	return resp.Token
}

func newAuthService(role models.UserRole, secret string) *service.AuthService {
	return service.NewAuthService(&stubUserReader{role: role}, nil, nil, service.AuthConfig{
		Secret:     secret,
		Expiration: time.Hour,
	})
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	router, reached := newGuardedRouter(t, newAuthService(models.RoleStudent, "secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
	assert.Contains(t, w.Body.String(), "no credential provided")
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	router, reached := newGuardedRouter(t, newAuthService(models.RoleStudent, "secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Basic abc123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestJWTRejectsTokenSignedWithOtherSecret(t *testing.T) {
	issuer := newAuthService(models.RoleStudent, "other-secret")
	router, reached := newGuardedRouter(t, newAuthService(models.RoleStudent, "secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, issuer, "a@example.com"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	authService := newAuthService(models.RoleStudent, "secret")
	router, reached := newGuardedRouter(t, authService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, "a@example.com"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

func TestRequireRolesForbidsStudentOnAdminRoute(t *testing.T) {
	authService := newAuthService(models.RoleStudent, "secret")
	router, reached := newGuardedRouter(t, authService, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, "a@example.com"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached)
}

func TestRequireRolesAdmitsAdmin(t *testing.T) {
	authService := newAuthService(models.RoleAdmin, "secret")
	router, reached := newGuardedRouter(t, authService, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, "admin@example.com"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}
