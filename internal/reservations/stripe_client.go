package reservations

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

// PaymentIntent is the slice of the provider object the service needs.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       stripe.PaymentIntentStatus
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// StripePaymentClient issues and fetches payment intents against the live
// Stripe API. All SDK field access stays inside this wrapper so the service
// only deals with the narrow PaymentIntent view.
type StripePaymentClient struct {
	apiKey string
}

// NewStripePaymentClient configures the package-level Stripe key once.
func NewStripePaymentClient(apiKey string) *StripePaymentClient {
	stripe.Key = apiKey
	return &StripePaymentClient{apiKey: apiKey}
}

// CreateIntentInput carries everything needed to open an intent.
type CreateIntentInput struct {
	AmountMinor   int64
	Currency      string
	ReservationID string
	UserID        string
}

// CreateIntent opens a payment intent for a reservation. The reservation and
// user ids ride along as metadata and are re-checked at confirmation time.
func (c *StripePaymentClient) CreateIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.AmountMinor),
		Currency: stripe.String(input.Currency),
	}
	params.Context = ctx
	params.AddMetadata("reservation_id", input.ReservationID)
	params.AddMetadata("user_id", input.UserID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe payment intent creation failed")
	}
	return fromStripeIntent(intent), nil
}

// GetIntent fetches the current provider-side state of an intent.
func (c *StripePaymentClient) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe payment intent lookup failed")
	}
	return fromStripeIntent(intent), nil
}

func fromStripeIntent(intent *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
		Metadata:     intent.Metadata,
	}
}
