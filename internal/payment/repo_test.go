package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/payment"
	"github.com/aromas-andinas/storefront/internal/store"
)

func newRepo(t *testing.T) *payment.Repo {
	t.Helper()
	s := store.NewWithBackends(logger.NewNop(), store.NewFileBackend(t.TempDir(), false))
	return payment.NewRepo(s, logger.NewNop())
}

func testPayment(orderID string) *payment.Payment {
	return &payment.Payment{
		ID:            "pay-1",
		OrderID:       orderID,
		Name:          "Elena Vargas",
		Email:         "elena@example.com",
		Address:       "Av. Los Cafetales 120",
		City:          "Lima",
		Country:       "PE",
		PaymentMethod: "card",
		Status:        payment.StatusPending,
		Amount:        25.00,
		Currency:      "USD",
		Items: []payment.LineItem{
			{ProductID: "arabica-250", Name: "Arabica 250g", Quantity: 2, UnitPrice: 12.50},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCreateAndUpdateStatusPreservesFields(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))

	updated, err := repo.UpdateStatus(ctx, "ord-1", payment.StatusProcessing, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusProcessing, updated.Status)
	assert.Equal(t, "pi_123", updated.GatewayReference)

	// Everything else is unchanged.
	got, err := repo.GetByOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", got.ID)
	assert.Equal(t, "Elena Vargas", got.Name)
	assert.Equal(t, 25.00, got.Amount)
	assert.Equal(t, "USD", got.Currency)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, payment.StatusProcessing, got.Status)
	assert.Equal(t, "pi_123", got.GatewayReference)
}

func TestUpdateStatusUnknownOrderFailsWithoutMutation(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))

	_, err := repo.UpdateStatus(ctx, "ord-missing", payment.StatusProcessing, "pi_999")
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Stored collection is untouched.
	payments, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.StatusPending, payments[0].Status)
	assert.Empty(t, payments[0].GatewayReference)
}

func TestCreateRejectsDuplicateOrderID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))

	dup := testPayment("ord-1")
	dup.ID = "pay-2"
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, errs.ErrDuplicateOrder)

	payments, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestUpdateStatusRejectsTerminalTransitions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))
	_, err := repo.UpdateStatus(ctx, "ord-1", payment.StatusProcessing, "pi_123")
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "ord-1", payment.StatusCompleted, "")
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, "ord-1", payment.StatusFailed, "")
	var validationErr *errs.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatusRejectsSkippingProcessing(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))

	_, err := repo.UpdateStatus(ctx, "ord-1", payment.StatusCompleted, "")
	var validationErr *errs.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestMarkFailedRecordsReason(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPayment("ord-1")))
	require.NoError(t, repo.MarkFailed(ctx, "ord-1", "card declined"))

	got, err := repo.GetByOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, got.Status)
	assert.Equal(t, "card declined", got.FailureReason)

	// Already-terminal records are left alone.
	require.NoError(t, repo.MarkFailed(ctx, "ord-1", "second reason"))
	got, err = repo.GetByOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "card declined", got.FailureReason)
}

func TestListEmptyStorage(t *testing.T) {
	repo := newRepo(t)

	payments, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payments)
}
