package payment

import (
	"context"

	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/shopspring/decimal"
)

// IntentStatus mirrors the gateway-side payment intent lifecycle
type IntentStatus string

const (
	StatusSucceeded             IntentStatus = "succeeded"
	StatusProcessing            IntentStatus = "processing"
	StatusCanceled              IntentStatus = "canceled"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
)

// Intent is the gateway's view of an authorization-in-progress
type Intent struct {
	ID       string       `json:"id"`
	Status   IntentStatus `json:"status"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Method   string       `json:"payment_method"`
}

// Gateway is the thin boundary to the external payment processor. Card
// intents are created with redirect-based methods disabled; FPX intents are
// restricted to the FPX method family, which authorizes through a redirect.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, method models.PaymentMethod) (clientSecret string, err error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

// MinorUnits converts a major-unit currency amount to the gateway's integer
// minor units, rounding to the nearest cent (20.90 -> 2090).
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
