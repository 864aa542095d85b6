package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/config"
	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/outbox"
	"github.com/amartel/rentaride-backend/pkg/outbox/payloads"
)

// Service defines the premium-subscription surface exposed to controllers.
type Service interface {
	Create(ctx context.Context, userID, agencyID uuid.UUID) (*CreateResultDTO, error)
	Confirm(ctx context.Context, userID, agencyID uuid.UUID) (*SubscriptionDTO, error)
	Get(ctx context.Context, agencyID uuid.UUID) (*SubscriptionDTO, error)
	Cancel(ctx context.Context, userID, agencyID uuid.UUID) (*SubscriptionDTO, error)
}

type subscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error)
	FindByAgency(ctx context.Context, agencyID uuid.UUID) (*models.Subscription, error)
	ActivateTx(tx *gorm.DB, id uuid.UUID) error
	CancelTx(tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

type agencyStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	SetPremiumTx(tx *gorm.DB, id uuid.UUID, premium bool) error
}

type billingClient interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*ProviderSubscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies required to build the subscription service.
type ServiceParams struct {
	Repo     subscriptionRepository
	Users    userStore
	Agencies agencyStore
	Billing  billingClient
	Tx       txRunner
	Outbox   eventEmitter
	Stripe   config.StripeConfig
	Logger   *logger.Logger
}

type service struct {
	repo     subscriptionRepository
	users    userStore
	agencies agencyStore
	billing  billingClient
	tx       txRunner
	outbox   eventEmitter
	stripe   config.StripeConfig
	logg     *logger.Logger
}

// NewService constructs the subscription service. Billing may be nil when the
// provider is unconfigured; every operation then fails with a dependency error.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if params.Agencies == nil {
		return nil, fmt.Errorf("agency store is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		agencies: params.Agencies,
		billing:  params.Billing,
		tx:       params.Tx,
		outbox:   params.Outbox,
		stripe:   params.Stripe,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, userID, agencyID uuid.UUID) (*CreateResultDTO, error) {
	if s.billing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing provider is not configured")
	}
	if s.stripe.SubscriptionPriceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription price is not configured")
	}

	agency, err := s.loadAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByAgency(ctx, agencyID); err == nil && existing.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "agency already has an active subscription")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	provider, err := s.billing.CreateSubscription(ctx, customerID, s.stripe.SubscriptionPriceID)
	if err != nil {
		return nil, err
	}

	record := &models.Subscription{
		AgencyID:             agency.ID,
		Active:               false,
		StripeSubscriptionID: provider.ID,
		PriceID:              &s.stripe.SubscriptionPriceID,
		StartDate:            time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"subscription_id": created.ID.String(),
		"agency_id":       agency.ID.String(),
	})
	s.logg.Info(logCtx, "subscription created, awaiting confirmation")
	return &CreateResultDTO{
		SubscriptionID: created.ID,
		ClientSecret:   provider.ClientSecret,
	}, nil
}

// Confirm re-verifies the provider-side subscription before activating,
// mirroring the payment confirmation checks rather than trusting the
// caller's claim that payment setup finished.
func (s *service) Confirm(ctx context.Context, userID, agencyID uuid.UUID) (*SubscriptionDTO, error) {
	if s.billing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing provider is not configured")
	}

	agency, err := s.loadAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByAgency(ctx, agencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription to confirm").
				WithCheck("missing_subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}

	provider, err := s.billing.GetSubscription(ctx, record.StripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	if provider.Status != stripe.SubscriptionStatusActive && provider.Status != stripe.SubscriptionStatusTrialing {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription payment has not completed").
			WithCheck("subscription_not_active")
	}

	alreadyActive := record.Active
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.ActivateTx(tx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate subscription")
		}
		if err := s.agencies.SetPremiumTx(tx, agency.ID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set agency premium")
		}
		if alreadyActive {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionActive,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{UserID: userID, AgencyID: &agency.ID, Role: enums.UserRoleAgency.String()},
			Data: payloads.SubscriptionActivatedEvent{
				SubscriptionID:       record.ID,
				AgencyID:             agency.ID,
				StripeSubscriptionID: record.StripeSubscriptionID,
				ActivatedAt:          time.Now().UTC(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	record.Active = true
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"subscription_id": record.ID.String(),
		"agency_id":       agency.ID.String(),
	})
	s.logg.Info(logCtx, "subscription activated")
	return FromModel(record), nil
}

func (s *service) Get(ctx context.Context, agencyID uuid.UUID) (*SubscriptionDTO, error) {
	record, err := s.repo.FindByAgency(ctx, agencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	return FromModel(record), nil
}

func (s *service) Cancel(ctx context.Context, userID, agencyID uuid.UUID) (*SubscriptionDTO, error) {
	if s.billing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing provider is not configured")
	}

	agency, err := s.loadAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByAgency(ctx, agencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if !record.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is not active")
	}

	if err := s.billing.CancelSubscription(ctx, record.StripeSubscriptionID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CancelTx(tx, record.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel subscription")
		}
		if err := s.agencies.SetPremiumTx(tx, agency.ID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear agency premium")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCanceled,
			AggregateType: enums.AggregateSubscription,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{UserID: userID, AgencyID: &agency.ID, Role: enums.UserRoleAgency.String()},
			Data: payloads.SubscriptionCancelledEvent{
				SubscriptionID:       record.ID,
				AgencyID:             agency.ID,
				StripeSubscriptionID: record.StripeSubscriptionID,
				CancelledAt:          now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	record.Active = false
	record.CanceledAt = &now
	s.logg.Info(s.logg.WithField(ctx, "subscription_id", record.ID.String()), "subscription cancelled")
	return FromModel(record), nil
}

func (s *service) loadAgency(ctx context.Context, agencyID uuid.UUID) (*models.Agency, error) {
	if agencyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agency profile not found")
	}
	agency, err := s.agencies.FindByID(ctx, agencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agency profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agency")
	}
	return agency, nil
}

func (s *service) ensureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.billing.EnsureCustomer(ctx, user.Email, user.FirstName+" "+user.LastName)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateStripeCustomerID(ctx, user.ID, customerID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist customer id")
	}
	return customerID, nil
}
