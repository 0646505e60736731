package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/repository"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
)

const catalogCachePrefix = "catalog:classes:"

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error
	UpsertFeedback(ctx context.Context, id, feedback string) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SubmitClassRequest describes an instructor's class submission.
type SubmitClassRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
	Seats int    `json:"seats" validate:"required,min=1"`
}

// UpdateClassStatusRequest carries an admin status transition.
type UpdateClassStatusRequest struct {
	Status models.ClassStatus `json:"status" validate:"required"`
}

// ClassFeedbackRequest carries feedback text for a class.
type ClassFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

type cachedCatalogPage struct {
	Classes    []models.Class     `json:"classes"`
	Pagination *models.Pagination `json:"pagination"`
}

// ClassService manages the class catalog.
type ClassService struct {
	repo      classRepository
	cache     catalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns classes with pagination metadata. Public catalog pages
// (approved classes, no search) are served from the cache when possible; the
// bool result reports a cache hit.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, bool, error) {
	cacheable := s.cache != nil && filter.Search == "" && filter.InstructorEmail == ""
	key := fmt.Sprintf("%s%s:p%d:s%d", catalogCachePrefix, filter.Status, filter.Page, filter.PageSize)

	if cacheable {
		var cached cachedCatalogPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Classes, cached.Pagination, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if cacheable {
		if err := s.cache.Set(ctx, key, cachedCatalogPage{Classes: classes, Pagination: pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return classes, pagination, false, nil
}

// FindByID returns a single class.
func (s *ClassService) FindByID(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Submit creates a class from an instructor submission. New classes always
// start pending with all seats available.
func (s *ClassService) Submit(ctx context.Context, instructorEmail string, req SubmitClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.Class{
		Name:            req.Name,
		InstructorEmail: instructorEmail,
		Price:           req.Price,
		Status:          models.ClassStatusPending,
		Enrolled:        0,
		AvailableSeats:  req.Seats,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.invalidateCatalog(ctx)
	return class, nil
}

// UpdateStatus applies an admin status transition, rejecting values outside
// the recognised set.
func (s *ClassService) UpdateStatus(ctx context.Context, id string, req UpdateClassStatusRequest) (*models.Class, error) {
	if !models.ValidClassStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised status value")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class status")
	}
	s.invalidateCatalog(ctx)
	return s.FindByID(ctx, id)
}

// UpsertFeedback attaches feedback to a class. Only an admin or the class's
// own instructor may write feedback.
func (s *ClassService) UpsertFeedback(ctx context.Context, id string, req ClassFeedbackRequest, claims *models.JWTClaims) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	class, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims == nil || (claims.Role != models.RoleAdmin && class.InstructorEmail != claims.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to attach feedback to this class")
	}

	if err := s.repo.UpsertFeedback(ctx, id, req.Feedback); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach feedback")
	}
	s.invalidateCatalog(ctx)
	return s.FindByID(ctx, id)
}

func (s *ClassService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, catalogCachePrefix+"*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
