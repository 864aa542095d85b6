package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
)

// Repository wires together reservation persistence helpers.
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

// CreateTx inserts a new reservation inside the caller's transaction so the
// row and its outbox event commit together.
func (r *Repository) CreateTx(tx *gorm.DB, reservation *models.Reservation) (*models.Reservation, error) {
	if err := tx.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// FindByID loads the reservation with its vehicle.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListByAgency returns bookings against the agency's fleet, newest first.
func (r *Repository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Joins("JOIN vehicles ON vehicles.id = reservations.vehicle_id").
		Where("vehicles.agency_id = ?", agencyID).
		Order("reservations.created_at DESC").
		Order("reservations.id DESC").
		Find(&rows).Error
	return rows, err
}

// SetPaymentIntentID stores the provider intent id on the reservation.
// Repeated issuance overwrites the previous id.
func (r *Repository) SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		UpdateColumn("stripe_payment_intent_id", intentID).Error
}

// MarkPaidTx applies the paid transition as a single conditional update.
// The status filter makes a repeat confirmation a no-op write and refuses
// cancelled or completed reservations; it returns the affected row count so
// the caller can distinguish the two.
func (r *Repository) MarkPaidTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	result := tx.Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id, []enums.ReservationStatus{
			enums.ReservationStatusPending,
			enums.ReservationStatusPaid,
		}).
		UpdateColumn("status", enums.ReservationStatusPaid)
	return result.RowsAffected, result.Error
}

// CancelTx cancels a still-pending reservation; returns the affected rows.
func (r *Repository) CancelTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	result := tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationStatusPending).
		UpdateColumn("status", enums.ReservationStatusCancelled)
	return result.RowsAffected, result.Error
}
