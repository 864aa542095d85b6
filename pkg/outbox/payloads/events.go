package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationCreatedEvent signals a new pending booking.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID       `json:"reservation_id"`
	UserID        uuid.UUID       `json:"user_id"`
	VehicleID     uuid.UUID       `json:"vehicle_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Days          int             `json:"days"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// ReservationPaidEvent is emitted when payment confirmation succeeds.
type ReservationPaidEvent struct {
	ReservationID   uuid.UUID       `json:"reservation_id"`
	UserID          uuid.UUID       `json:"user_id"`
	VehicleID       uuid.UUID       `json:"vehicle_id"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"payment_intent_id"`
	PaidAt          time.Time       `json:"paid_at"`
}

// ReservationCancelledEvent is emitted when a booking is cancelled.
type ReservationCancelledEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

// SubscriptionActivatedEvent is emitted when an agency's premium plan goes live.
type SubscriptionActivatedEvent struct {
	SubscriptionID       uuid.UUID `json:"subscription_id"`
	AgencyID             uuid.UUID `json:"agency_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	ActivatedAt          time.Time `json:"activated_at"`
}

// SubscriptionCancelledEvent is emitted when an agency ends its premium plan.
type SubscriptionCancelledEvent struct {
	SubscriptionID       uuid.UUID `json:"subscription_id"`
	AgencyID             uuid.UUID `json:"agency_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	CancelledAt          time.Time `json:"cancelled_at"`
}
