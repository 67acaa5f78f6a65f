// Package payment adapts the Stripe API to the payment provider used by
// the payment service.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no Stripe secret key was supplied.
var ErrNotConfigured = errors.New("payment provider not configured")

// StripeProvider creates card payment intents.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider returns a provider authenticated with secretKey.
// backends may be nil to talk to the public Stripe API.  An empty key
// yields a provider whose calls fail with ErrNotConfigured.
func NewStripeProvider(secretKey string, backends *stripe.Backends) *StripeProvider {
	if secretKey == "" {
		return &StripeProvider{}
	}
	return &StripeProvider{api: client.New(secretKey, backends)}
}

// CreateIntent creates a payment intent for amountCents in currency,
// restricted to card payments, and returns its client secret.
func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	if p.api == nil {
		return "", ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
