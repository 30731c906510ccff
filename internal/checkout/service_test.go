package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aromas-andinas/storefront/internal/checkout"
	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/gateway"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/payment"
)

// Mock implementations
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepo) UpdateStatus(ctx context.Context, orderID string, next payment.Status, gatewayRef string) (*payment.Payment, error) {
	args := m.Called(ctx, orderID, next, gatewayRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockRepo) MarkFailed(ctx context.Context, orderID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

type MockCharger struct {
	mock.Mock
	lastParams gateway.IntentParams
}

func (m *MockCharger) CreateIntent(ctx context.Context, p gateway.IntentParams) (*gateway.Intent, error) {
	m.lastParams = p
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Intent), args.Error(1)
}

func validRequest() checkout.Request {
	return checkout.Request{
		Name:          "Elena Vargas",
		Email:         "elena@example.com",
		Phone:         "+51 990 000 111",
		Address:       "Av. Los Cafetales 120",
		City:          "Lima",
		Country:       "PE",
		PostalCode:    "15023",
		PaymentMethod: "card",
		Amount:        25.00,
		Currency:      "USD",
		Items: []payment.LineItem{
			{ProductID: "arabica-250", Name: "Arabica 250g", Quantity: 1, UnitPrice: 12.50},
			{ProductID: "geisha-250", Name: "Geisha 250g", Quantity: 1, UnitPrice: 12.50},
		},
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{25.00, 2500},
		{12.345, 1235}, // exact tie in float64, rounds up
		{10.005, 1001}, // scales above the boundary
		{0.01, 1},
		{99.99, 9999},
		{1234.56, 123456},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, checkout.MinorUnits(tc.amount), "amount %v", tc.amount)
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	mockRepo := new(MockRepo)
	mockGateway := new(MockCharger)
	svc := checkout.NewService(mockRepo, mockGateway, logger.NewNop())

	var created *payment.Payment
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
		created = p
		return p.Status == payment.StatusPending && p.Amount == 25.00 && p.Currency == "USD"
	})).Return(nil)

	mockGateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(p gateway.IntentParams) bool {
		return p.AmountMinor == 2500 && p.Currency == "usd"
	})).Return(&gateway.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)

	mockRepo.On("UpdateStatus", mock.Anything, mock.Anything, payment.StatusProcessing, "pi_123").
		Return(&payment.Payment{Status: payment.StatusProcessing}, nil)

	resp, err := svc.Checkout(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.NotEmpty(t, resp.OrderID)
	assert.NotEmpty(t, resp.PaymentID)

	// The identifiers in the response match the persisted record and the
	// metadata block sent to the gateway.
	require.NotNil(t, created)
	assert.Equal(t, created.OrderID, resp.OrderID)
	assert.Equal(t, created.ID, resp.PaymentID)
	assert.Equal(t, resp.OrderID, mockGateway.lastParams.Metadata["orderId"])
	assert.Equal(t, resp.PaymentID, mockGateway.lastParams.Metadata["paymentId"])
	assert.Equal(t, "Elena Vargas", mockGateway.lastParams.Metadata["customerName"])
	assert.Equal(t, "elena@example.com", mockGateway.lastParams.Metadata["customerEmail"])

	mockRepo.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
}

func TestCheckoutValidationEnumeratesMissingFields(t *testing.T) {
	mockRepo := new(MockRepo)
	mockGateway := new(MockCharger)
	svc := checkout.NewService(mockRepo, mockGateway, logger.NewNop())

	req := validRequest()
	req.Name = ""
	req.Email = ""
	req.Items = nil

	_, err := svc.Checkout(context.Background(), req)

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{"name", "email", "items"}, validationErr.Fields)

	// Nothing was persisted and the gateway was never contacted.
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockGateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestCheckoutRejectsNonPositiveAmount(t *testing.T) {
	svc := checkout.NewService(new(MockRepo), new(MockCharger), logger.NewNop())

	req := validRequest()
	req.Amount = 0

	_, err := svc.Checkout(context.Background(), req)
	var validationErr *errs.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCheckoutPersistenceFailureAbortsBeforeGateway(t *testing.T) {
	mockRepo := new(MockRepo)
	mockGateway := new(MockCharger)
	svc := checkout.NewService(mockRepo, mockGateway, logger.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(errs.NewPersistence("file", "save", assert.AnError))

	_, err := svc.Checkout(context.Background(), validRequest())

	var persistErr *errs.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	mockGateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestCheckoutGatewayFailureMarksRecordFailed(t *testing.T) {
	mockRepo := new(MockRepo)
	mockGateway := new(MockCharger)
	svc := checkout.NewService(mockRepo, mockGateway, logger.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockGateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(nil, errs.NewGateway("card declined", assert.AnError))
	mockRepo.On("MarkFailed", mock.Anything, mock.Anything, mock.MatchedBy(func(reason string) bool {
		return reason != ""
	})).Return(nil)

	_, err := svc.Checkout(context.Background(), validRequest())

	var gatewayErr *errs.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "card declined", gatewayErr.Msg)
	mockRepo.AssertCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutGatewayFailureWinsOverMarkFailedError(t *testing.T) {
	mockRepo := new(MockRepo)
	mockGateway := new(MockCharger)
	svc := checkout.NewService(mockRepo, mockGateway, logger.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockGateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(nil, errs.NewGateway("card declined", assert.AnError))
	mockRepo.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).
		Return(errs.NewPersistence("file", "save", assert.AnError))

	_, err := svc.Checkout(context.Background(), validRequest())

	var gatewayErr *errs.GatewayError
	assert.ErrorAs(t, err, &gatewayErr)
}
