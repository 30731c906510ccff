package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/gateway"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/payment"
)

// Request is one checkout submission: the payment record's input fields plus
// the requested amount in major currency units.
type Request struct {
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone,omitempty"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	Country       string             `json:"country"`
	PostalCode    string             `json:"postalCode,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	Items         []payment.LineItem `json:"items"`
}

// Response carries the gateway's continuation token plus both local
// identifiers the caller needs to track the attempt.
type Response struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
	PaymentID    string `json:"paymentId"`
}

// RepoAPI is the slice of the payment repository the orchestrator uses.
type RepoAPI interface {
	Create(ctx context.Context, p *payment.Payment) error
	UpdateStatus(ctx context.Context, orderID string, next payment.Status, gatewayRef string) (*payment.Payment, error)
	MarkFailed(ctx context.Context, orderID, reason string) error
}

// Service turns a checkout request into a durable payment record and a charge
// intent on the gateway, keeping the two in sync.
type Service struct {
	repo    RepoAPI
	gateway gateway.Charger
	log     *logger.Logger
}

func NewService(repo RepoAPI, gw gateway.Charger, log *logger.Logger) *Service {
	return &Service{repo: repo, gateway: gw, log: log}
}

// MinorUnits converts a major-unit amount to the gateway's smallest currency
// unit. Rounding is to the nearest integer with ties rounding away from zero,
// applied to the float64 scaling of the amount: 12.345 -> 1235,
// 10.005 -> 1001, 25.00 -> 2500.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func validate(req Request) error {
	missing := []string{}
	checks := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"address", req.Address},
		{"city", req.City},
		{"country", req.Country},
		{"paymentMethod", req.PaymentMethod},
		{"currency", req.Currency},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			missing = append(missing, c.name)
		}
	}
	if len(req.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return errs.NewValidation(missing...)
	}
	if req.Amount <= 0 {
		return errs.NewValidationMsg(fmt.Sprintf("invalid amount: %.2f", req.Amount))
	}
	for i, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return errs.NewValidationMsg(fmt.Sprintf("invalid line item at position %d", i))
		}
	}
	return nil
}

// newID builds a best-effort unique identifier: millisecond timestamp plus a
// random suffix. Collisions surface as a duplicate-order error on Create,
// which callers treat as retryable with fresh identifiers.
func newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Checkout validates the request, persists a pending payment record, asks the
// gateway for a charge intent and moves the record to processing. The record
// is written before the gateway is contacted: a gateway call whose response is
// lost still has a durable local record to reconcile against.
func (s *Service) Checkout(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	orderID := newID("ord")
	paymentID := newID("pay")

	record := &payment.Payment{
		ID:            paymentID,
		OrderID:       orderID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		PostalCode:    req.PostalCode,
		PaymentMethod: req.PaymentMethod,
		Status:        payment.StatusPending,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Items:         req.Items,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	// Never create an external charge without a local record.
	if err := s.repo.Create(ctx, record); err != nil {
		s.log.Error("CHECKOUT", fmt.Sprintf("Failed to persist pending payment for order %s: %v", orderID, err))
		return nil, err
	}
	s.log.LogPayment("PENDING", orderID, fmt.Sprintf("payment %s persisted, contacting gateway", paymentID))

	intent, err := s.gateway.CreateIntent(ctx, gateway.IntentParams{
		AmountMinor: MinorUnits(req.Amount),
		Currency:    strings.ToLower(req.Currency),
		Description: fmt.Sprintf("Order %s", orderID),
		Shipping: gateway.ShippingDetails{
			Name:       req.Name,
			Phone:      req.Phone,
			Address:    req.Address,
			City:       req.City,
			Country:    req.Country,
			PostalCode: req.PostalCode,
		},
		Metadata: map[string]string{
			"orderId":       orderID,
			"paymentId":     paymentID,
			"customerName":  req.Name,
			"customerEmail": req.Email,
		},
	})
	if err != nil {
		// The attempt failed on the gateway side; record that explicitly so
		// the audit trail shows one failed attempt rather than a pending one
		// that never resolves. If the status write itself fails the record
		// stays pending and the gateway error still wins.
		if markErr := s.repo.MarkFailed(ctx, orderID, err.Error()); markErr != nil {
			s.log.Error("CHECKOUT", fmt.Sprintf("Failed to mark order %s failed: %v", orderID, markErr))
		}
		return nil, err
	}

	if _, err := s.repo.UpdateStatus(ctx, orderID, payment.StatusProcessing, intent.ID); err != nil {
		// The intent exists; reconciliation can still find the record through
		// the metadata identifiers.
		s.log.Error("CHECKOUT", fmt.Sprintf("Intent %s created but status update failed for order %s: %v", intent.ID, orderID, err))
		return nil, err
	}

	s.log.LogPayment("PROCESSING", orderID, fmt.Sprintf("intent %s attached", intent.ID))
	return &Response{
		ClientSecret: intent.ClientSecret,
		OrderID:      orderID,
		PaymentID:    paymentID,
	}, nil
}
