package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/oasis-cafe/oasis-service/internal/models"
)

// StripeGateway implements Gateway against the Stripe API
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway creates a gateway client for the given secret key and
// settlement currency.
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeGateway{
		api:      api,
		currency: currency,
	}
}

// CreateIntent requests a payment intent and returns its client secret. The
// amount is converted to minor units here so callers deal in major units
// throughout.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, method models.PaymentMethod) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(amount)),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx

	switch method {
	case models.MethodCard:
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		}
	case models.MethodFPX:
		params.PaymentMethodTypes = stripe.StringSlice([]string{"fpx"})
	default:
		return "", fmt.Errorf("unsupported payment method %q", method)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return intent.ClientSecret, nil
}

// RetrieveIntent fetches the authoritative state of an intent by ID
func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	result := &Intent{
		ID:       intent.ID,
		Status:   IntentStatus(intent.Status),
		Amount:   intent.Amount,
		Currency: string(intent.Currency),
	}
	if intent.PaymentMethod != nil {
		result.Method = intent.PaymentMethod.ID
	}

	return result, nil
}
