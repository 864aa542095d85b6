package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amartel/rentaride-backend/pkg/enums"
)

// Reservation represents one rental booking. Days and Total are derived
// server-side at creation time and never accepted from client input.
type Reservation struct {
	ID                    uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	VehicleID             uuid.UUID               `gorm:"column:vehicle_id;type:uuid;not null;index"`
	StartDate             time.Time               `gorm:"column:start_date;type:date;not null"`
	EndDate               time.Time               `gorm:"column:end_date;type:date;not null"`
	Days                  int                     `gorm:"column:days;not null"`
	Total                 decimal.Decimal         `gorm:"column:total;type:numeric(10,2);not null"`
	Currency              string                  `gorm:"column:currency;not null;default:'eur'"`
	Status                enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'pending'"`
	DepositAmount         decimal.Decimal         `gorm:"column:deposit_amount;type:numeric(10,2);not null;default:0"`
	DepositMethod         enums.DepositMethod     `gorm:"column:deposit_method;type:deposit_method;not null;default:'credit-card'"`
	DepositStatus         enums.DepositStatus     `gorm:"column:deposit_status;type:deposit_status;not null;default:'pending'"`
	StripePaymentIntentID *string                 `gorm:"column:stripe_payment_intent_id"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
}
