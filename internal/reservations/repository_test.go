package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
)

func setupReservationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  agency_id TEXT NOT NULL,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  category TEXT NOT NULL,
  price_per_day TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'eur',
  features TEXT,
  image_url TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	reservations := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  vehicle_id TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  days INTEGER NOT NULL,
  total TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'eur',
  status TEXT NOT NULL DEFAULT 'pending',
  deposit_amount TEXT NOT NULL DEFAULT '0',
  deposit_method TEXT NOT NULL DEFAULT 'credit-card',
  deposit_status TEXT NOT NULL DEFAULT 'pending',
  stripe_payment_intent_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vehicles).Error)
	require.NoError(t, db.Exec(reservations).Error)
	return db
}

func seedVehicle(t *testing.T, db *gorm.DB, agencyID uuid.UUID) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		AgencyID:    agencyID,
		Make:        "Peugeot",
		Model:       "208",
		Year:        2022,
		Category:    enums.VehicleCategoryCompact,
		PricePerDay: decimal.RequireFromString("42.50"),
		Currency:    "eur",
		Available:   true,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func seedReservation(t *testing.T, db *gorm.DB, userID uuid.UUID, vehicle *models.Vehicle, status enums.ReservationStatus) *models.Reservation {
	t.Helper()
	reservation := &models.Reservation{
		ID:        uuid.New(),
		UserID:    userID,
		VehicleID: vehicle.ID,
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		Days:      3,
		Total:     decimal.RequireFromString("127.50"),
		Currency:  "eur",
		Status:    status,
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}

func TestRepositoryMarkPaidTxTransitions(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	vehicle := seedVehicle(t, db, uuid.New())

	t.Run("pending becomes paid", func(t *testing.T) {
		reservation := seedReservation(t, db, userID, vehicle, enums.ReservationStatusPending)
		rows, err := repo.MarkPaidTx(db, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		loaded, err := repo.FindByID(context.Background(), reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, enums.ReservationStatusPaid, loaded.Status)
	})

	t.Run("paid stays paid", func(t *testing.T) {
		reservation := seedReservation(t, db, userID, vehicle, enums.ReservationStatusPaid)
		rows, err := repo.MarkPaidTx(db, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("cancelled is refused", func(t *testing.T) {
		reservation := seedReservation(t, db, userID, vehicle, enums.ReservationStatusCancelled)
		rows, err := repo.MarkPaidTx(db, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)

		loaded, err := repo.FindByID(context.Background(), reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, enums.ReservationStatusCancelled, loaded.Status)
	})
}

func TestRepositoryCancelTxOnlyPending(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	vehicle := seedVehicle(t, db, uuid.New())

	pending := seedReservation(t, db, userID, vehicle, enums.ReservationStatusPending)
	paid := seedReservation(t, db, userID, vehicle, enums.ReservationStatusPaid)

	rows, err := repo.CancelTx(db, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.CancelTx(db, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestRepositoryListByAgencyJoinsFleet(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	agencyID := uuid.New()
	ownVehicle := seedVehicle(t, db, agencyID)
	otherVehicle := seedVehicle(t, db, uuid.New())

	mine := seedReservation(t, db, userID, ownVehicle, enums.ReservationStatusPending)
	seedReservation(t, db, userID, otherVehicle, enums.ReservationStatusPending)

	rows, err := repo.ListByAgency(context.Background(), agencyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)
	require.NotNil(t, rows[0].Vehicle)
	assert.Equal(t, agencyID, rows[0].Vehicle.AgencyID)
}

func TestRepositorySetPaymentIntentIDOverwrites(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	reservation := seedReservation(t, db, uuid.New(), seedVehicle(t, db, uuid.New()), enums.ReservationStatusPending)

	require.NoError(t, repo.SetPaymentIntentID(context.Background(), reservation.ID, "pi_first"))
	require.NoError(t, repo.SetPaymentIntentID(context.Background(), reservation.ID, "pi_second"))

	loaded, err := repo.FindByID(context.Background(), reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.StripePaymentIntentID)
	assert.Equal(t, "pi_second", *loaded.StripePaymentIntentID)
}
