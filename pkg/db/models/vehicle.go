package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/amartel/rentaride-backend/pkg/enums"
)

// Vehicle is a rentable unit in an agency's fleet. PricePerDay is the
// authoritative rate the pricing calculator reads; clients never set totals.
type Vehicle struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AgencyID    uuid.UUID             `gorm:"column:agency_id;type:uuid;not null;index"`
	Make        string                `gorm:"column:make;not null"`
	Model       string                `gorm:"column:model;not null"`
	Year        int                   `gorm:"column:year;not null"`
	Category    enums.VehicleCategory `gorm:"column:category;type:vehicle_category;not null"`
	PricePerDay decimal.Decimal       `gorm:"column:price_per_day;type:numeric(10,2);not null"`
	Currency    string                `gorm:"column:currency;not null;default:'eur'"`
	Features    pq.StringArray        `gorm:"column:features;type:text[]"`
	ImageURL    *string               `gorm:"column:image_url"`
	Available   bool                  `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
