package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// SubscriptionDTO is the transport shape for subscription reads.
type SubscriptionDTO struct {
	ID                   uuid.UUID  `json:"id"`
	AgencyID             uuid.UUID  `json:"agency_id"`
	Active               bool       `json:"active"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	CanceledAt           *time.Time `json:"canceled_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// CreateResultDTO returns the provider token the agency completes payment
// setup with. The record stays inactive until confirmation.
type CreateResultDTO struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	ClientSecret   string    `json:"client_secret"`
}

func FromModel(s *models.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                   s.ID,
		AgencyID:             s.AgencyID,
		Active:               s.Active,
		StripeSubscriptionID: s.StripeSubscriptionID,
		StartDate:            s.StartDate,
		EndDate:              s.EndDate,
		CanceledAt:           s.CanceledAt,
		CreatedAt:            s.CreatedAt,
	}
}
