package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// Repository persists agency subscription records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new subscription record, inactive until confirmed.
func (r *Repository) Create(ctx context.Context, subscription *models.Subscription) (*models.Subscription, error) {
	if err := r.db.WithContext(ctx).Create(subscription).Error; err != nil {
		return nil, err
	}
	return subscription, nil
}

// FindByAgency returns the agency's most recent subscription record.
func (r *Repository) FindByAgency(ctx context.Context, agencyID uuid.UUID) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		First(&subscription).Error; err != nil {
		return nil, err
	}
	return &subscription, nil
}

// ActivateTx flips the subscription active inside the caller's transaction.
// Activating an already-active subscription is a same-value write, so the
// update carries no status filter.
func (r *Repository) ActivateTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumn("active", true).Error
}

// CancelTx deactivates the subscription and stamps the cancellation time.
func (r *Repository) CancelTx(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return tx.Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"active":      false,
			"canceled_at": at,
		}).Error
}
