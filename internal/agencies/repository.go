package agencies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// Repository exposes agency persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an agencies repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new agency profile and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateAgencyDTO) (*models.Agency, error) {
	agency := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(agency).Error; err != nil {
		return nil, err
	}
	return agency, nil
}

// FindByID loads an agency by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).First(&agency, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

// FindByOwner loads the agency profile belonging to the given user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).First(&agency, "owner_id = ?", ownerID).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

// Update applies the mutable profile fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateAgencyDTO) (*models.Agency, error) {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.Email != nil {
		updates["email"] = *dto.Email
	}
	if dto.City != nil {
		updates["city"] = *dto.City
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.Agency{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// SetPremiumTx flips the premium flag inside the caller's transaction.
func (r *Repository) SetPremiumTx(tx *gorm.DB, id uuid.UUID, premium bool) error {
	return tx.Model(&models.Agency{}).
		Where("id = ?", id).
		UpdateColumn("premium", premium).Error
}

// TouchLastActive refreshes the agency's last_active_at timestamp.
func (r *Repository) TouchLastActive(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Agency{}).
		Where("id = ?", id).
		UpdateColumn("last_active_at", at).Error
}
