package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/outbox"
	"github.com/amartel/rentaride-backend/pkg/outbox/payloads"
)

const dateLayout = "2006-01-02"

// Service defines the booking surface exposed to controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateReservationInput) (*ReservationDTO, error)
	IssueIntent(ctx context.Context, userID, reservationID uuid.UUID) (*PaymentIntentDTO, error)
	Confirm(ctx context.Context, userID, reservationID uuid.UUID) (*ConfirmResultDTO, error)
	Get(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationDTO, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]ReservationDTO, error)
	Cancel(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error)
}

type reservationRepository interface {
	CreateTx(tx *gorm.DB, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Reservation, error)
	SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error
	MarkPaidTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	CancelTx(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type vehicleFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

type paymentClient interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams bundles the dependencies required to build a reservation service.
type ServiceParams struct {
	Repo     reservationRepository
	Vehicles vehicleFinder
	Payments paymentClient
	Tx       txRunner
	Outbox   eventEmitter
	Logger   *logger.Logger
}

type service struct {
	repo     reservationRepository
	vehicles vehicleFinder
	payments paymentClient
	tx       txRunner
	outbox   eventEmitter
	logg     *logger.Logger
}

// NewService constructs the reservation service. Payments may be nil when the
// provider is unconfigured; intent issuance and confirmation then fail with a
// dependency error instead of a panic.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reservation repository is required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicle finder is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		vehicles: params.Vehicles,
		payments: params.Payments,
		tx:       params.Tx,
		outbox:   params.Outbox,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateReservationInput) (*ReservationDTO, error) {
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_date must be YYYY-MM-DD").WithCheck("invalid_date_range")
	}
	end, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date must be YYYY-MM-DD").WithCheck("invalid_date_range")
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vehicle")
	}
	if !vehicle.Available {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is not available for booking")
	}

	quote, err := ComputeQuote(start, end, vehicle.PricePerDay)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		UserID:    userID,
		VehicleID: vehicle.ID,
		StartDate: start,
		EndDate:   end,
		Days:      quote.Days,
		Total:     quote.Total,
		Currency:  vehicle.Currency,
		Status:    enums.ReservationStatusPending,
	}
	if input.DepositMethod != nil {
		method, err := enums.ParseDepositMethod(*input.DepositMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid deposit method")
		}
		reservation.DepositMethod = method
	}
	if input.DepositAmount != nil {
		if input.DepositAmount.Sign() < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount cannot be negative")
		}
		reservation.DepositAmount = *input.DepositAmount
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.CreateTx(tx, reservation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: enums.UserRoleClient.String()},
			Data: payloads.ReservationCreatedEvent{
				ReservationID: created.ID,
				UserID:        created.UserID,
				VehicleID:     created.VehicleID,
				StartDate:     created.StartDate,
				EndDate:       created.EndDate,
				Days:          created.Days,
				Total:         created.Total,
				Currency:      created.Currency,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	reservation.Vehicle = vehicle
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"reservation_id": reservation.ID.String(),
		"vehicle_id":     vehicle.ID.String(),
		"days":           quote.Days,
		"total":          quote.Total.String(),
	})
	s.logg.Info(logCtx, "reservation created")
	return FromModel(reservation), nil
}

func (s *service) IssueIntent(ctx context.Context, userID, reservationID uuid.UUID) (*PaymentIntentDTO, error) {
	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment provider is not configured")
	}

	reservation, err := s.loadOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is not awaiting payment")
	}
	if reservation.Total.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation total must be positive").WithCheck("invalid_amount")
	}

	intent, err := s.payments.CreateIntent(ctx, CreateIntentInput{
		AmountMinor:   AmountMinorUnits(reservation.Total),
		Currency:      reservation.Currency,
		ReservationID: reservation.ID.String(),
		UserID:        userID.String(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPaymentIntentID(ctx, reservation.ID, intent.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment intent id")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"reservation_id": reservation.ID.String(),
		"amount_minor":   intent.Amount,
	})
	s.logg.Info(logCtx, "payment intent issued")
	return &PaymentIntentDTO{
		ReservationID: reservation.ID,
		ClientSecret:  intent.ClientSecret,
		AmountMinor:   intent.Amount,
		Currency:      intent.Currency,
	}, nil
}

// Confirm re-derives payment truth from the provider before flipping status.
// The checks run in order and short-circuit on the first failure; client-side
// claims of success are never trusted.
func (s *service) Confirm(ctx context.Context, userID, reservationID uuid.UUID) (*ConfirmResultDTO, error) {
	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment provider is not configured")
	}

	reservation, err := s.loadOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.StripePaymentIntentID == nil || *reservation.StripePaymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no payment intent was issued for this reservation").
			WithCheck("missing_payment_intent")
	}

	intent, err := s.payments.GetIntent(ctx, *reservation.StripePaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment has not succeeded").
			WithCheck("payment_not_succeeded")
	}
	if intent.Amount != AmountMinorUnits(reservation.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount does not match reservation total").
			WithCheck("amount_mismatch")
	}
	if intent.Metadata["reservation_id"] != reservation.ID.String() ||
		intent.Metadata["user_id"] != userID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent does not belong to this reservation").
			WithCheck("metadata_mismatch")
	}

	alreadyPaid := reservation.Status == enums.ReservationStatusPaid
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.MarkPaidTx(tx, reservation.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark reservation paid")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation can no longer be paid")
		}
		if alreadyPaid {
			// Repeat confirmation of the same terminal fact, no new event.
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationPaid,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.ReservationPaidEvent{
				ReservationID:   reservation.ID,
				UserID:          reservation.UserID,
				VehicleID:       reservation.VehicleID,
				Total:           reservation.Total,
				Currency:        reservation.Currency,
				PaymentIntentID: intent.ID,
				PaidAt:          time.Now().UTC(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"reservation_id":    reservation.ID.String(),
		"payment_intent_id": intent.ID,
	})
	s.logg.Info(logCtx, "reservation payment confirmed")
	return &ConfirmResultDTO{
		ReservationID: reservation.ID,
		Status:        enums.ReservationStatusPaid,
	}, nil
}

func (s *service) Get(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.loadOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}
	return FromModel(reservation), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reservations")
	}
	return toDTOs(rows), nil
}

func (s *service) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]ReservationDTO, error) {
	rows, err := s.repo.ListByAgency(ctx, agencyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list agency reservations")
	}
	return toDTOs(rows), nil
}

func (s *service) Cancel(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.loadOwned(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != enums.ReservationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending reservations can be cancelled")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.CancelTx(tx, reservation.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel reservation")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation can no longer be cancelled")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCancelled,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.ReservationCancelledEvent{
				ReservationID: reservation.ID,
				UserID:        reservation.UserID,
				VehicleID:     reservation.VehicleID,
				CancelledAt:   time.Now().UTC(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = enums.ReservationStatusCancelled
	s.logg.Info(s.logg.WithField(ctx, "reservation_id", reservation.ID.String()), "reservation cancelled")
	return FromModel(reservation), nil
}

func (s *service) loadOwned(ctx context.Context, userID, reservationID uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reservation")
	}
	if reservation.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reservation belongs to another user")
	}
	return reservation, nil
}

func toDTOs(rows []models.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
