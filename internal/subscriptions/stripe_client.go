package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/subscription"

	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

// ProviderSubscription is the slice of the provider object the service needs.
type ProviderSubscription struct {
	ID           string
	Status       stripe.SubscriptionStatus
	ClientSecret string
}

// StripeSubscriptionClient wraps the recurring-billing calls. As with payment
// intents, SDK field access stays inside this wrapper.
type StripeSubscriptionClient struct {
	apiKey string
}

// NewStripeSubscriptionClient configures the package-level Stripe key once.
func NewStripeSubscriptionClient(apiKey string) *StripeSubscriptionClient {
	stripe.Key = apiKey
	return &StripeSubscriptionClient{apiKey: apiKey}
}

// EnsureCustomer creates a provider customer for the user. Callers persist the
// returned id so subsequent subscriptions reuse the same customer.
func (c *StripeSubscriptionClient) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe customer creation failed")
	}
	return cust.ID, nil
}

// CreateSubscription opens an incomplete subscription so billing only starts
// once the agency completes payment setup client-side. The confirmation
// secret from the first invoice is what the client pays with.
func (c *StripeSubscriptionClient) CreateSubscription(ctx context.Context, customerID, priceID string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.confirmation_secret")

	sub, err := subscription.New(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe subscription creation failed")
	}
	return &ProviderSubscription{
		ID:           sub.ID,
		Status:       sub.Status,
		ClientSecret: subscriptionClientSecret(sub),
	}, nil
}

// GetSubscription fetches the current provider-side state.
func (c *StripeSubscriptionClient) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe subscription lookup failed")
	}
	return &ProviderSubscription{ID: sub.ID, Status: sub.Status}, nil
}

// CancelSubscription ends the provider-side subscription immediately.
func (c *StripeSubscriptionClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := subscription.Cancel(subscriptionID, params); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe subscription cancellation failed")
	}
	return nil
}

func subscriptionClientSecret(sub *stripe.Subscription) string {
	if sub == nil || sub.LatestInvoice == nil || sub.LatestInvoice.ConfirmationSecret == nil {
		return ""
	}
	return sub.LatestInvoice.ConfirmationSecret.ClientSecret
}
