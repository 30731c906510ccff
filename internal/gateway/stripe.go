// Package gateway wraps the external payment gateway. The orchestrator only
// sees the Charger interface; Stripe is the one implementation.
package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
)

// ShippingDetails is the shipping block sent with a charge intent.
type ShippingDetails struct {
	Name       string
	Phone      string
	Address    string
	City       string
	Country    string
	PostalCode string
}

// IntentParams describes one charge intent request. AmountMinor is in the
// gateway's smallest currency unit.
type IntentParams struct {
	AmountMinor int64
	Currency    string
	Description string
	Shipping    ShippingDetails
	Metadata    map[string]string
}

// Intent is the gateway-side object representing an in-progress charge.
// ClientSecret is the client-side continuation token.
type Intent struct {
	ID           string
	ClientSecret string
}

// Charger creates charge intents on the gateway.
type Charger interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
}

// StripeGateway implements Charger on the Stripe PaymentIntents API.
type StripeGateway struct {
	client *client.API
	log    *logger.Logger
}

// NewStripeGateway fails with a configuration error when the secret key is
// absent, so a misconfigured deployment is caught before any record is written.
func NewStripeGateway(secretKey string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errs.NewConfiguration("STRIPE_SECRET_KEY not set")
	}
	sc := client.New(secretKey, nil)
	log.Info("STRIPE", "Stripe client initialized")
	return &StripeGateway{client: sc, log: log}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(p.AmountMinor),
		Currency:    stripe.String(p.Currency),
		Description: stripe.String(p.Description),
		Metadata:    p.Metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.Shipping.Name != "" {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name:  stripe.String(p.Shipping.Name),
			Phone: stripe.String(p.Shipping.Phone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(p.Shipping.Address),
				City:       stripe.String(p.Shipping.City),
				Country:    stripe.String(p.Shipping.Country),
				PostalCode: stripe.String(p.Shipping.PostalCode),
			},
		}
	}

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent: %v", err))
		if stripeErr, ok := err.(*stripe.Error); ok {
			return nil, errs.NewGateway(stripeErr.Msg, err)
		}
		return nil, errs.NewGateway(err.Error(), err)
	}

	g.log.Info("STRIPE", fmt.Sprintf("Payment intent created: %s", pi.ID))
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
