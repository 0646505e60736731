package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
)

type selectionRepository interface {
	ListByEmail(ctx context.Context, email string) ([]models.SelectionDetail, error)
	FindByID(ctx context.Context, id string) (*models.Selection, error)
	Create(ctx context.Context, selection *models.Selection) error
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type selectionClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// SelectClassRequest describes a user's intent to enroll.
type SelectClassRequest struct {
	ClassID string `json:"class_id" validate:"required"`
}

// SelectionService manages the per-user ledger of enrollment intents.
type SelectionService struct {
	repo      selectionRepository
	classes   selectionClassReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSelectionService constructs SelectionService.
func NewSelectionService(repo selectionRepository, classes selectionClassReader, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// ListByEmail returns the caller's selections. Querying another user's email
// soft-denies with an empty list so existence of data never leaks.
func (s *SelectionService) ListByEmail(ctx context.Context, requestedEmail string, claims *models.JWTClaims) ([]models.SelectionDetail, error) {
	if claims == nil || requestedEmail == "" || requestedEmail != claims.Email {
		return []models.SelectionDetail{}, nil
	}

	selections, err := s.repo.ListByEmail(ctx, requestedEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
	}
	if selections == nil {
		selections = []models.SelectionDetail{}
	}
	return selections, nil
}

// Select records the caller's intent to enroll in a class. The class must
// exist and be approved for enrollment.
func (s *SelectionService) Select(ctx context.Context, claims *models.JWTClaims, req SelectClassRequest) (*models.Selection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Status != models.ClassStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class is not open for enrollment")
	}

	selection := &models.Selection{
		UserEmail: claims.Email,
		ClassID:   req.ClassID,
	}
	if err := s.repo.Create(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create selection")
	}
	return selection, nil
}

// Remove deletes one of the caller's selections. Removing an id that is
// already gone acknowledges without error.
func (s *SelectionService) Remove(ctx context.Context, id string, claims *models.JWTClaims) (bool, error) {
	selection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection")
	}
	if claims == nil || selection.UserEmail != claims.Email {
		return false, appErrors.Clone(appErrors.ErrForbidden, "selection belongs to another user")
	}

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete selection")
	}
	return removed, nil
}
