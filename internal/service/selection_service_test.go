package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
)

type mockSelectionRepo struct {
	byID    map[string]*models.Selection
	byEmail map[string][]models.SelectionDetail
}

func (m *mockSelectionRepo) ListByEmail(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	return m.byEmail[email], nil
}

func (m *mockSelectionRepo) FindByID(ctx context.Context, id string) (*models.Selection, error) {
	if sel, ok := m.byID[id]; ok {
		return sel, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSelectionRepo) Create(ctx context.Context, selection *models.Selection) error {
	if m.byID == nil {
		m.byID = make(map[string]*models.Selection)
	}
	selection.ID = "sel-" + selection.ClassID
	m.byID[selection.ID] = selection
	return nil
}

func (m *mockSelectionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if _, ok := m.byID[id]; ok {
		delete(m.byID, id)
		return true, nil
	}
	return false, nil
}

func newSelectionFixture() (*SelectionService, *mockSelectionRepo) {
	repo := &mockSelectionRepo{
		byID: map[string]*models.Selection{
			"sel-1": {ID: "sel-1", UserEmail: "a@example.com", ClassID: "class-1"},
		},
		byEmail: map[string][]models.SelectionDetail{
			"a@example.com": {{Selection: models.Selection{ID: "sel-1", UserEmail: "a@example.com"}, ClassName: "Drums"}},
		},
	}
	classes := &mockSeatReserver{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Status: models.ClassStatusApproved, AvailableSeats: 3},
		"class-2": {ID: "class-2", Status: models.ClassStatusPending, AvailableSeats: 3},
	}}
	return NewSelectionService(repo, classes, nil, nil), repo
}

func TestListSelectionsSoftDeniesForeignEmail(t *testing.T) {
	svc, _ := newSelectionFixture()

	list, err := svc.ListByEmail(context.Background(), "a@example.com", &models.JWTClaims{Email: "b@example.com"})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListByEmail(context.Background(), "a@example.com", &models.JWTClaims{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSelectApprovedClass(t *testing.T) {
	svc, repo := newSelectionFixture()

	sel, err := svc.Select(context.Background(), studentClaims("a@example.com"), SelectClassRequest{ClassID: "class-1"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", sel.UserEmail)
	assert.Contains(t, repo.byID, sel.ID)
}

func TestSelectRejectsPendingClass(t *testing.T) {
	svc, _ := newSelectionFixture()

	_, err := svc.Select(context.Background(), studentClaims("a@example.com"), SelectClassRequest{ClassID: "class-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSelectMissingClass(t *testing.T) {
	svc, _ := newSelectionFixture()

	_, err := svc.Select(context.Background(), studentClaims("a@example.com"), SelectClassRequest{ClassID: "class-404"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRemoveOwnSelection(t *testing.T) {
	svc, repo := newSelectionFixture()

	removed, err := svc.Remove(context.Background(), "sel-1", studentClaims("a@example.com"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NotContains(t, repo.byID, "sel-1")
}

func TestRemoveForeignSelectionForbidden(t *testing.T) {
	svc, repo := newSelectionFixture()

	_, err := svc.Remove(context.Background(), "sel-1", studentClaims("b@example.com"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.byID, "sel-1")
}

func TestRemoveMissingSelectionAcknowledges(t *testing.T) {
	svc, _ := newSelectionFixture()

	removed, err := svc.Remove(context.Background(), "sel-404", studentClaims("a@example.com"))
	require.NoError(t, err)
	assert.False(t, removed)
}
