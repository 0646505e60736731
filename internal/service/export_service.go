package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/export"
)

type exportPaymentReader interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type exportClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ExportService renders payment statements and enrollment receipts.
type ExportService struct {
	payments exportPaymentReader
	classes  exportClassReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(payments exportPaymentReader, classes exportClassReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payments: payments,
		classes:  classes,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// PaymentStatementCSV renders every payment as a CSV statement for admins.
func (s *ExportService) PaymentStatementCSV(ctx context.Context) ([]byte, error) {
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	headers := []string{"id", "user_email", "class_id", "amount", "currency", "intent_id", "created_at"}
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"id":         p.ID,
			"user_email": p.UserEmail,
			"class_id":   p.ClassID,
			"amount":     formatAmount(p.Amount),
			"currency":   p.Currency,
			"intent_id":  p.IntentID,
			"created_at": p.CreatedAt.Format(time.RFC3339),
		})
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	return data, nil
}

// ReceiptPDF renders a PDF receipt for one payment. Only the payment's owner
// or an admin may fetch it.
func (s *ExportService) ReceiptPDF(ctx context.Context, paymentID string, claims *models.JWTClaims) ([]byte, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if claims == nil || (claims.Role != models.RoleAdmin && payment.UserEmail != claims.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "receipt belongs to another user")
	}

	className := payment.ClassID
	if class, err := s.classes.FindByID(ctx, payment.ClassID); err == nil {
		className = class.Name
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("receipt class lookup failed", zap.Error(err))
	}

	fields := []export.ReceiptField{
		{Label: "Receipt", Value: payment.ID},
		{Label: "Billed to", Value: payment.UserEmail},
		{Label: "Class", Value: className},
		{Label: "Amount", Value: fmt.Sprintf("%s %s", formatAmount(payment.Amount), payment.Currency)},
		{Label: "Charge reference", Value: payment.IntentID},
		{Label: "Paid at", Value: payment.CreatedAt.Format(time.RFC1123)},
	}

	data, err := s.pdf.RenderReceipt("Enrollment Receipt", fields)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, nil
}

// formatAmount renders an amount held in cents as a decimal string.
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
