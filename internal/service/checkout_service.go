package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/payments"
)

// CreateIntentRequest asks the gateway to prepare a charge.
type CreateIntentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CreateIntentResponse returns the opaque token the client uses to confirm
// the charge with the gateway.
type CreateIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// CheckoutService fronts the payment gateway for charge preparation.
type CheckoutService struct {
	gateway   payments.Gateway
	currency  string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(gateway payments.Gateway, currency string, validate *validator.Validate, logger *zap.Logger) *CheckoutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{gateway: gateway, currency: currency, validator: validate, logger: logger}
}

// CreateIntent registers a charge with the gateway.
func (s *CheckoutService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment intent payload")
	}

	intent, err := s.gateway.CreateIntent(ctx, req.Amount, s.currency)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment gateway unavailable")
	}

	return &CreateIntentResponse{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
