package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rhythmic-hub/enroll-api/internal/models"
	appErrors "github.com/rhythmic-hub/enroll-api/pkg/errors"
	"github.com/rhythmic-hub/enroll-api/pkg/payments"
)

type mockPaymentRepo struct {
	records   map[string]models.Payment
	createErr error
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.records == nil {
		m.records = make(map[string]models.Payment)
	}
	for _, existing := range m.records {
		if existing.IdempotencyKey == payment.IdempotencyKey {
			return &pq.Error{Code: "23505"}
		}
	}
	if payment.ID == "" {
		payment.ID = "pay-" + payment.IdempotencyKey
	}
	m.records[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.records[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	var list []models.Payment
	for _, p := range m.records {
		if p.UserEmail == email {
			list = append(list, p)
		}
	}
	return list, nil
}

func (m *mockPaymentRepo) ListAll(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	for _, p := range m.records {
		list = append(list, p)
	}
	return list, nil
}

type mockSelectionRemover struct {
	selections map[string]bool
	deleteErr  error
}

func (m *mockSelectionRemover) DeleteByID(ctx context.Context, id string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if m.selections[id] {
		delete(m.selections, id)
		return true, nil
	}
	return false, nil
}

type mockSeatReserver struct {
	classes map[string]*models.Class
}

func (m *mockSeatReserver) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok {
		copied := *class
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSeatReserver) ReserveSeat(ctx context.Context, id string) (*models.Class, error) {
	class, ok := m.classes[id]
	if !ok || class.AvailableSeats <= 0 {
		return nil, sql.ErrNoRows
	}
	class.Enrolled++
	class.AvailableSeats--
	copied := *class
	return &copied, nil
}

type mockGateway struct {
	intents     map[string]*payments.Intent
	retrieveErr error
}

func (m *mockGateway) CreateIntent(ctx context.Context, amount int64, currency string) (*payments.Intent, error) {
	return &payments.Intent{ID: "pi_new", Amount: amount, Currency: currency, Status: "requires_payment_method", ClientSecret: "pi_new_secret"}, nil
}

func (m *mockGateway) RetrieveIntent(ctx context.Context, id string) (*payments.Intent, error) {
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if intent, ok := m.intents[id]; ok {
		return intent, nil
	}
	return nil, errors.New("intent not found")
}

func newReconcilerFixture() (*PaymentService, *mockPaymentRepo, *mockSelectionRemover, *mockSeatReserver) {
	paymentRepo := &mockPaymentRepo{}
	selections := &mockSelectionRemover{selections: map[string]bool{"sel-1": true}}
	classes := &mockSeatReserver{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Name: "Drum Basics", Status: models.ClassStatusApproved, Enrolled: 0, AvailableSeats: 5},
	}}
	gateway := &mockGateway{intents: map[string]*payments.Intent{
		"pi_1": {ID: "pi_1", Amount: 5000, Status: payments.IntentStatusSucceeded},
	}}
	svc := NewPaymentService(paymentRepo, selections, classes, gateway, false, "usd", validator.New(), zap.NewNop())
	return svc, paymentRepo, selections, classes
}

func studentClaims(email string) *models.JWTClaims {
	return &models.JWTClaims{Email: email, Role: models.RoleStudent}
}

func TestReconcileHappyPath(t *testing.T) {
	svc, paymentRepo, selections, classes := newReconcilerFixture()

	result, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-1",
		Amount:      5000,
		IntentID:    "pi_1",
	})
	require.NoError(t, err)

	assert.True(t, result.SelectionRemoved)
	assert.Equal(t, 1, result.Class.Enrolled)
	assert.Equal(t, 4, result.Class.AvailableSeats)
	assert.Equal(t, "a@example.com", result.Payment.UserEmail)
	assert.Len(t, paymentRepo.records, 1)
	assert.Empty(t, selections.selections)
	assert.Equal(t, 1, classes.classes["class-1"].Enrolled)
}

func TestReconcileRetryIsIdempotent(t *testing.T) {
	svc, paymentRepo, _, classes := newReconcilerFixture()
	req := ReconcileRequest{SelectionID: "sel-1", ClassID: "class-1", Amount: 5000, IntentID: "pi_1"}

	_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), req)
	require.NoError(t, err)

	_, err = svc.Reconcile(context.Background(), studentClaims("a@example.com"), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicatePayment.Code, appErrors.FromError(err).Code)

	// The retry recorded nothing and moved no seats.
	assert.Len(t, paymentRepo.records, 1)
	assert.Equal(t, 1, classes.classes["class-1"].Enrolled)
	assert.Equal(t, 4, classes.classes["class-1"].AvailableSeats)
}

func TestReconcileMissingSelectionIsNoOp(t *testing.T) {
	svc, _, _, _ := newReconcilerFixture()

	result, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-gone",
		ClassID:     "class-1",
		Amount:      5000,
		IntentID:    "pi_1",
	})
	require.NoError(t, err)
	assert.False(t, result.SelectionRemoved)
	assert.Equal(t, 1, result.Class.Enrolled)
}

func TestReconcileDanglingClass(t *testing.T) {
	svc, paymentRepo, _, _ := newReconcilerFixture()

	_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-missing",
		Amount:      5000,
		IntentID:    "pi_1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDanglingReference.Code, appErrors.FromError(err).Code)

	// The payment survived: it is the durability checkpoint.
	assert.Len(t, paymentRepo.records, 1)
}

func TestReconcileSeatsExhausted(t *testing.T) {
	svc, _, _, classes := newReconcilerFixture()
	classes.classes["class-1"].AvailableSeats = 0
	classes.classes["class-1"].Enrolled = 5

	_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-1",
		Amount:      5000,
		IntentID:    "pi_1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSeatsExhausted.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 5, classes.classes["class-1"].Enrolled)
	assert.Equal(t, 0, classes.classes["class-1"].AvailableSeats)
}

func TestReconcileUnverifiedChargeBlocksAllMutations(t *testing.T) {
	svc, paymentRepo, selections, classes := newReconcilerFixture()

	_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-1",
		Amount:      5000,
		IntentID:    "pi_unknown",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)

	assert.Empty(t, paymentRepo.records)
	assert.True(t, selections.selections["sel-1"])
	assert.Equal(t, 0, classes.classes["class-1"].Enrolled)
}

func TestReconcileAmountMismatchRejected(t *testing.T) {
	svc, paymentRepo, _, _ := newReconcilerFixture()

	_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-1",
		Amount:      100,
		IntentID:    "pi_1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, paymentRepo.records)
}

func TestReconcileConservesSeatTotal(t *testing.T) {
	svc, _, selections, classes := newReconcilerFixture()
	gatewayIntents := map[string]*payments.Intent{}
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		selections.selections["sel-"+id] = true
		gatewayIntents["pi_"+id] = &payments.Intent{ID: "pi_" + id, Amount: 5000, Status: payments.IntentStatusSucceeded}
	}
	svc.gateway = &mockGateway{intents: gatewayIntents}

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		_, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
			SelectionID: "sel-" + id,
			ClassID:     "class-1",
			Amount:      5000,
			IntentID:    "pi_" + id,
		})
		require.NoError(t, err)
	}

	class := classes.classes["class-1"]
	assert.Equal(t, 5, class.Enrolled)
	assert.Equal(t, 0, class.AvailableSeats)
	assert.Equal(t, 5, class.Enrolled+class.AvailableSeats)
}

func TestReconcileSkipVerifyTrustsPayload(t *testing.T) {
	paymentRepo := &mockPaymentRepo{}
	selections := &mockSelectionRemover{selections: map[string]bool{"sel-1": true}}
	classes := &mockSeatReserver{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", AvailableSeats: 1},
	}}
	svc := NewPaymentService(paymentRepo, selections, classes, &mockGateway{}, true, "usd", validator.New(), zap.NewNop())

	result, err := svc.Reconcile(context.Background(), studentClaims("a@example.com"), ReconcileRequest{
		SelectionID: "sel-1",
		ClassID:     "class-1",
		Amount:      5000,
		IntentID:    "pi_untracked",
	})
	require.NoError(t, err)
	assert.True(t, result.SelectionRemoved)
}

func TestListPaymentsSoftDeniesForeignEmail(t *testing.T) {
	svc, paymentRepo, _, _ := newReconcilerFixture()
	paymentRepo.records = map[string]models.Payment{
		"pay-1": {ID: "pay-1", UserEmail: "b@example.com"},
	}

	list, err := svc.ListByEmail(context.Background(), "b@example.com", studentClaims("a@example.com"))
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListByEmail(context.Background(), "b@example.com", studentClaims("b@example.com"))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
