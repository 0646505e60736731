package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
)

func newExportFixture() (*ExportService, *mockPaymentRepo) {
	paymentRepo := &mockPaymentRepo{records: map[string]models.Payment{
		"pay-1": {
			ID:        "pay-1",
			UserEmail: "a@example.com",
			ClassID:   "class-1",
			Amount:    5000,
			Currency:  "usd",
			IntentID:  "pi_1",
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	classes := &mockSeatReserver{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Drum Basics"},
	}}
	return NewExportService(paymentRepo, classes, nil), paymentRepo
}

func TestPaymentStatementCSV(t *testing.T) {
	svc, _ := newExportFixture()

	data, err := svc.PaymentStatementCSV(context.Background())
	require.NoError(t, err)

	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,user_email,class_id,amount,currency,intent_id,created_at", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "pay-1")
	assert.Contains(t, lines[1], "50.00")
}

func TestReceiptPDFForOwner(t *testing.T) {
	svc, _ := newExportFixture()

	data, err := svc.ReceiptPDF(context.Background(), "pay-1", studentClaims("a@example.com"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReceiptPDFForbiddenForOtherStudent(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.ReceiptPDF(context.Background(), "pay-1", studentClaims("b@example.com"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReceiptPDFAllowsAdmin(t *testing.T) {
	svc, _ := newExportFixture()

	data, err := svc.ReceiptPDF(context.Background(), "pay-1", &models.JWTClaims{Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestReceiptPDFMissingPayment(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.ReceiptPDF(context.Background(), "pay-404", studentClaims("a@example.com"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50.00", formatAmount(5000))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "12.34", formatAmount(1234))
}
