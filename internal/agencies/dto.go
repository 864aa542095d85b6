package agencies

import (
	"time"

	"github.com/google/uuid"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// AgencyDTO is the transport shape for agency profiles.
type AgencyDTO struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	City        *string    `json:"city,omitempty"`
	Premium     bool       `json:"premium"`
	LastActive  *time.Time `json:"last_active_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateAgencyDTO holds the data required to persist a new agency profile.
type CreateAgencyDTO struct {
	OwnerID     uuid.UUID
	Name        string
	Description *string
	Phone       *string
	Email       *string
	City        *string
}

// UpdateAgencyDTO carries the mutable profile fields.
type UpdateAgencyDTO struct {
	Name        *string
	Description *string
	Phone       *string
	Email       *string
	City        *string
}

func FromModel(a *models.Agency) *AgencyDTO {
	if a == nil {
		return nil
	}
	return &AgencyDTO{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Name:        a.Name,
		Description: a.Description,
		Phone:       a.Phone,
		Email:       a.Email,
		City:        a.City,
		Premium:     a.Premium,
		LastActive:  a.LastActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (c CreateAgencyDTO) ToModel() *models.Agency {
	return &models.Agency{
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Phone:       c.Phone,
		Email:       c.Email,
		City:        c.City,
	}
}
