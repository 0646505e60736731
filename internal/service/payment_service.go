package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	"github.com/rhythmic-hub/enroll-api/internal/repository"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/payments"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type selectionRemover interface {
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type seatReserver interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ReserveSeat(ctx context.Context, id string) (*models.Class, error)
}

// ReconcileRequest is the payment confirmation payload submitted by the
// client once the gateway reports the charge succeeded.
type ReconcileRequest struct {
	SelectionID    string `json:"selection_id" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	IntentID       string `json:"intent_id" validate:"required"`
	IdempotencyKey string `json:"idempotency_key"`
	Currency       string `json:"currency"`
}

// PaymentService runs the enrollment reconciliation workflow: record the
// payment, clear the selection, move one seat from available to enrolled.
type PaymentService struct {
	payments   paymentRepository
	selections selectionRemover
	classes    seatReserver
	gateway    payments.Gateway
	skipVerify bool
	currency   string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(paymentRepo paymentRepository, selections selectionRemover, classes seatReserver, gateway payments.Gateway, skipVerify bool, currency string, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:   paymentRepo,
		selections: selections,
		classes:    classes,
		gateway:    gateway,
		skipVerify: skipVerify,
		currency:   currency,
		validator:  validate,
		logger:     logger,
	}
}

// Reconcile converts a paid selection into a confirmed enrollment.
//
// The payment insert comes first: once it lands, the fact that money was
// received survives any later failure, and cleanup of the remaining steps is
// recoverable. The selection delete is idempotent by identifier, so a client
// re-submission after a partial failure is safe; the idempotency key on the
// payment row keeps the retry from recording the charge twice. The seat move
// is a single conditional update executed by the store, never a
// read-modify-write.
func (s *PaymentService) Reconcile(ctx context.Context, claims *models.JWTClaims, req ReconcileRequest) (*models.ReconcileResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	if !s.skipVerify {
		intent, err := s.gateway.RetrieveIntent(ctx, req.IntentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to verify charge with payment gateway")
		}
		if intent.Status != payments.IntentStatusSucceeded {
			return nil, appErrors.Clone(appErrors.ErrValidation, "charge has not succeeded")
		}
		if intent.Amount != req.Amount {
			return nil, appErrors.Clone(appErrors.ErrValidation, "charge amount does not match payload")
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}
	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		// One intent, one payment record.
		idempotencyKey = req.IntentID
	}

	payment := &models.Payment{
		UserEmail:      claims.Email,
		ClassID:        req.ClassID,
		SelectionID:    req.SelectionID,
		Amount:         req.Amount,
		Currency:       currency,
		IntentID:       req.IntentID,
		IdempotencyKey: idempotencyKey,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicatePayment, "payment already recorded for this charge")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to record payment")
	}

	selectionRemoved, err := s.selections.DeleteByID(ctx, req.SelectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment recorded but selection cleanup failed")
	}
	if !selectionRemoved {
		s.logger.Info("selection already removed, treating as retry",
			zap.String("selection_id", req.SelectionID),
			zap.String("payment_id", payment.ID))
	}

	class, err := s.classes.ReserveSeat(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifySeatFailure(ctx, req.ClassID, payment.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment recorded but seat update failed")
	}

	return &models.ReconcileResult{
		Payment:          *payment,
		SelectionRemoved: selectionRemoved,
		Class:            *class,
	}, nil
}

// classifySeatFailure splits the two reasons the conditional seat update can
// match zero rows. Both are reported against an already-recorded payment, so
// neither is safe to retry blindly.
func (s *PaymentService) classifySeatFailure(ctx context.Context, classID, paymentID string) error {
	_, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("payment recorded for a missing class",
				zap.String("class_id", classID),
				zap.String("payment_id", paymentID))
			return appErrors.Clone(appErrors.ErrDanglingReference, "")
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment recorded but class lookup failed")
	}
	return appErrors.Clone(appErrors.ErrSeatsExhausted, "")
}

// ListByEmail returns the caller's payment history with the same soft-deny
// behavior as the selection ledger.
func (s *PaymentService) ListByEmail(ctx context.Context, requestedEmail string, claims *models.JWTClaims) ([]models.Payment, error) {
	if claims == nil || requestedEmail == "" || requestedEmail != claims.Email {
		return []models.Payment{}, nil
	}
	list, err := s.payments.ListByEmail(ctx, requestedEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	if list == nil {
		list = []models.Payment{}
	}
	return list, nil
}
