package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription persists an agency's premium plan state. Active stays false
// until the activation step has re-verified the provider-side subscription.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AgencyID             uuid.UUID  `gorm:"column:agency_id;type:uuid;not null;index"`
	Active               bool       `gorm:"column:active;not null;default:false"`
	StripeSubscriptionID string     `gorm:"column:stripe_subscription_id;not null;unique"`
	PriceID              *string    `gorm:"column:price_id"`
	StartDate            time.Time  `gorm:"column:start_date;not null"`
	EndDate              *time.Time `gorm:"column:end_date"`
	CanceledAt           *time.Time `gorm:"column:canceled_at"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
