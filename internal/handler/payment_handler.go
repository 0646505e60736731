package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rhythmic-hub/enroll-api/internal/service"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/response"
)

// PaymentHandler exposes checkout and the reconciliation entry point.
type PaymentHandler struct {
	checkout *service.CheckoutService
	payments *service.PaymentService
	exports  *service.ExportService
	metrics  *service.MetricsService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(checkout *service.CheckoutService, payments *service.PaymentService, exports *service.ExportService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, payments: payments, exports: exports, metrics: metrics}
}

// CreateIntent godoc
// @Summary Create a payment intent with the gateway
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateIntentRequest true "Intent payload"
// @Success 200 {object} response.Envelope
// @Router /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req service.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	intent, err := h.checkout.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intent, nil)
}

// Reconcile godoc
// @Summary Reconcile a completed payment into a confirmed enrollment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.ReconcileRequest true "Payment confirmation payload"
// @Success 201 {object} response.Envelope
// @Router /payment [post]
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	var req service.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.payments.Reconcile(c.Request.Context(), claims, req)
	if err != nil {
		h.metrics.RecordReconciliation(appErrors.FromError(err).Code)
		response.Error(c, err)
		return
	}
	h.metrics.RecordReconciliation("success")
	response.Created(c, result)
}

// List godoc
// @Summary List the caller's payments
// @Tags Payments
// @Produce json
// @Param email query string true "Owner email"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.payments.ListByEmail(c.Request.Context(), c.Query("email"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// ExportStatement godoc
// @Summary Export all payments as CSV
// @Tags Payments
// @Produce text/csv
// @Success 200 {string} string "CSV statement"
// @Router /payments/export [get]
func (h *PaymentHandler) ExportStatement(c *gin.Context) {
	data, err := h.exports.PaymentStatementCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="payments.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Receipt godoc
// @Summary Download a PDF receipt for a payment
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {string} string "PDF receipt"
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	data, err := h.exports.ReceiptPDF(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
