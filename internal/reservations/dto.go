package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amartel/rentaride-backend/internal/vehicles"
	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
)

// CreateReservationInput is the booking request payload. Totals are never
// read from it; the pricing calculator is the only source of truth.
type CreateReservationInput struct {
	VehicleID     uuid.UUID        `json:"vehicle_id" validate:"required"`
	StartDate     string           `json:"start_date" validate:"required"`
	EndDate       string           `json:"end_date" validate:"required"`
	DepositMethod *string          `json:"deposit_method,omitempty"`
	DepositAmount *decimal.Decimal `json:"deposit_amount,omitempty"`
}

// ReservationDTO is the transport shape for booking reads.
type ReservationDTO struct {
	ID               uuid.UUID               `json:"id"`
	UserID           uuid.UUID               `json:"user_id"`
	VehicleID        uuid.UUID               `json:"vehicle_id"`
	StartDate        time.Time               `json:"start_date"`
	EndDate          time.Time               `json:"end_date"`
	Days             int                     `json:"days"`
	Total            decimal.Decimal         `json:"total"`
	Currency         string                  `json:"currency"`
	Status           enums.ReservationStatus `json:"status"`
	DepositAmount    decimal.Decimal         `json:"deposit_amount"`
	DepositMethod    enums.DepositMethod     `json:"deposit_method"`
	DepositStatus    enums.DepositStatus     `json:"deposit_status"`
	HasPaymentIntent bool                    `json:"has_payment_intent"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
	Vehicle          *vehicles.VehicleDTO    `json:"vehicle,omitempty"`
}

// PaymentIntentDTO returns the provider token the client completes payment with.
type PaymentIntentDTO struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ClientSecret  string    `json:"client_secret"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
}

// ConfirmResultDTO acknowledges a verified payment.
type ConfirmResultDTO struct {
	ReservationID uuid.UUID               `json:"reservation_id"`
	Status        enums.ReservationStatus `json:"status"`
}

func FromModel(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		VehicleID:        r.VehicleID,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		Days:             r.Days,
		Total:            r.Total,
		Currency:         r.Currency,
		Status:           r.Status,
		DepositAmount:    r.DepositAmount,
		DepositMethod:    r.DepositMethod,
		DepositStatus:    r.DepositStatus,
		HasPaymentIntent: r.StripePaymentIntentID != nil,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Vehicle:          vehicles.FromModel(r.Vehicle),
	}
}
