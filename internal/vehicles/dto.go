package vehicles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	"github.com/amartel/rentaride-backend/pkg/pagination"
)

// VehicleDTO is the transport shape for catalog and fleet reads.
type VehicleDTO struct {
	ID          uuid.UUID             `json:"id"`
	AgencyID    uuid.UUID             `json:"agency_id"`
	Make        string                `json:"make"`
	Model       string                `json:"model"`
	Year        int                   `json:"year"`
	Category    enums.VehicleCategory `json:"category"`
	PricePerDay decimal.Decimal       `json:"price_per_day"`
	Currency    string                `json:"currency"`
	Features    []string              `json:"features"`
	ImageURL    *string               `json:"image_url,omitempty"`
	Available   bool                  `json:"available"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CreateVehicleInput captures the payload for adding a fleet vehicle.
type CreateVehicleInput struct {
	Make        string          `json:"make" validate:"required"`
	Model       string          `json:"model" validate:"required"`
	Year        int             `json:"year" validate:"required,gte=1950"`
	Category    string          `json:"category" validate:"required"`
	PricePerDay decimal.Decimal `json:"price_per_day" validate:"required"`
	Features    []string        `json:"features,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// UpdateVehicleInput carries the mutable vehicle fields.
type UpdateVehicleInput struct {
	Make        *string          `json:"make,omitempty"`
	Model       *string          `json:"model,omitempty"`
	Year        *int             `json:"year,omitempty"`
	Category    *string          `json:"category,omitempty"`
	PricePerDay *decimal.Decimal `json:"price_per_day,omitempty"`
	Features    []string         `json:"features,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Available   *bool            `json:"available,omitempty"`
}

// ListFilters describe the supported filter knobs for the public catalog.
type ListFilters struct {
	Category    *enums.VehicleCategory
	City        *string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Query       string
	OnlyPremium bool
}

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one catalog page plus the cursor for the next one.
type ListResult struct {
	Vehicles   []VehicleDTO `json:"vehicles"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(v *models.Vehicle) *VehicleDTO {
	if v == nil {
		return nil
	}
	return &VehicleDTO{
		ID:          v.ID,
		AgencyID:    v.AgencyID,
		Make:        v.Make,
		Model:       v.Model,
		Year:        v.Year,
		Category:    v.Category,
		PricePerDay: v.PricePerDay,
		Currency:    v.Currency,
		Features:    append([]string(nil), v.Features...),
		ImageURL:    v.ImageURL,
		Available:   v.Available,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
