package reservations

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/outbox"
)

type stubReservationRepo struct {
	reservations map[uuid.UUID]*models.Reservation
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{reservations: make(map[uuid.UUID]*models.Reservation)}
}

func (s *stubReservationRepo) CreateTx(_ *gorm.DB, reservation *models.Reservation) (*models.Reservation, error) {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	s.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (s *stubReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	reservation, ok := s.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (s *stubReservationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubReservationRepo) ListByAgency(_ context.Context, _ uuid.UUID) ([]models.Reservation, error) {
	return nil, nil
}

func (s *stubReservationRepo) SetPaymentIntentID(_ context.Context, id uuid.UUID, intentID string) error {
	if reservation, ok := s.reservations[id]; ok {
		reservation.StripePaymentIntentID = &intentID
	}
	return nil
}

func (s *stubReservationRepo) MarkPaidTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	reservation, ok := s.reservations[id]
	if !ok {
		return 0, nil
	}
	switch reservation.Status {
	case enums.ReservationStatusPending, enums.ReservationStatusPaid:
		reservation.Status = enums.ReservationStatusPaid
		return 1, nil
	default:
		return 0, nil
	}
}

func (s *stubReservationRepo) CancelTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	reservation, ok := s.reservations[id]
	if !ok || reservation.Status != enums.ReservationStatusPending {
		return 0, nil
	}
	reservation.Status = enums.ReservationStatusCancelled
	return 1, nil
}

type stubVehicleFinder struct {
	vehicles map[uuid.UUID]*models.Vehicle
}

func (s *stubVehicleFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

type stubPaymentClient struct {
	created []CreateIntentInput
	intents map[string]*PaymentIntent
	nextID  int
}

func newStubPaymentClient() *stubPaymentClient {
	return &stubPaymentClient{intents: make(map[string]*PaymentIntent)}
}

func (s *stubPaymentClient) CreateIntent(_ context.Context, input CreateIntentInput) (*PaymentIntent, error) {
	s.created = append(s.created, input)
	s.nextID++
	intent := &PaymentIntent{
		ID:           "pi_" + uuid.NewString()[:8],
		ClientSecret: "secret_test",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       input.AmountMinor,
		Currency:     input.Currency,
		Metadata: map[string]string{
			"reservation_id": input.ReservationID,
			"user_id":        input.UserID,
		},
	}
	s.intents[intent.ID] = intent
	return intent, nil
}

func (s *stubPaymentClient) GetIntent(_ context.Context, intentID string) (*PaymentIntent, error) {
	intent, ok := s.intents[intentID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe payment intent lookup failed")
	}
	return intent, nil
}

// markSucceeded simulates the client completing payment with the provider.
func (s *stubPaymentClient) markSucceeded(intentID string) {
	if intent, ok := s.intents[intentID]; ok {
		intent.Status = stripe.PaymentIntentStatusSucceeded
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type testHarness struct {
	svc      Service
	repo     *stubReservationRepo
	payments *stubPaymentClient
	emitter  *stubEmitter
	vehicle  *models.Vehicle
	userID   uuid.UUID
}

func newTestHarness(t *testing.T, pricePerDay string) *testHarness {
	t.Helper()
	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		AgencyID:    uuid.New(),
		Make:        "Renault",
		Model:       "Clio",
		Year:        2022,
		Category:    enums.VehicleCategoryCompact,
		PricePerDay: decimal.RequireFromString(pricePerDay),
		Currency:    "eur",
		Available:   true,
	}
	repo := newStubReservationRepo()
	payments := newStubPaymentClient()
	emitter := &stubEmitter{}

	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Vehicles: &stubVehicleFinder{vehicles: map[uuid.UUID]*models.Vehicle{vehicle.ID: vehicle}},
		Payments: payments,
		Tx:       stubTxRunner{},
		Outbox:   emitter,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &testHarness{
		svc:      svc,
		repo:     repo,
		payments: payments,
		emitter:  emitter,
		vehicle:  vehicle,
		userID:   uuid.New(),
	}
}

func (h *testHarness) createReservation(t *testing.T, start, end string) *ReservationDTO {
	t.Helper()
	dto, err := h.svc.Create(context.Background(), h.userID, CreateReservationInput{
		VehicleID: h.vehicle.ID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return dto
}

func errorCheckTag(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected check details on error, got %#v", typed.Details())
	}
	check, _ := details["check"].(string)
	return check
}

func TestCreateIssueConfirmHappyPath(t *testing.T) {
	h := newTestHarness(t, "150.00")

	dto := h.createReservation(t, "2025-06-01", "2025-06-04")
	if dto.Days != 3 {
		t.Fatalf("expected 3 days, got %d", dto.Days)
	}
	if !dto.Total.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("expected total 450.00, got %s", dto.Total)
	}
	if dto.Status != enums.ReservationStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}

	intentDTO, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID)
	if err != nil {
		t.Fatalf("issue intent: %v", err)
	}
	if intentDTO.AmountMinor != 45000 {
		t.Fatalf("expected 45000 minor units, got %d", intentDTO.AmountMinor)
	}
	if intentDTO.ClientSecret == "" {
		t.Fatalf("expected client secret to be returned")
	}

	stored := h.repo.reservations[dto.ID]
	if stored.StripePaymentIntentID == nil {
		t.Fatalf("expected intent id persisted on reservation")
	}
	h.payments.markSucceeded(*stored.StripePaymentIntentID)

	result, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != enums.ReservationStatusPaid {
		t.Fatalf("expected paid status, got %s", result.Status)
	}
	if stored.Status != enums.ReservationStatusPaid {
		t.Fatalf("expected stored reservation paid, got %s", stored.Status)
	}

	var types []enums.OutboxEventType
	for _, e := range h.emitter.events {
		types = append(types, e.EventType)
	}
	if len(types) != 2 || types[0] != enums.EventReservationCreated || types[1] != enums.EventReservationPaid {
		t.Fatalf("unexpected event sequence: %v", types)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	if _, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID); err != nil {
		t.Fatalf("issue intent: %v", err)
	}
	h.payments.markSucceeded(*h.repo.reservations[dto.ID].StripePaymentIntentID)

	for i := 0; i < 2; i++ {
		result, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
		if err != nil {
			t.Fatalf("confirm attempt %d: %v", i+1, err)
		}
		if result.Status != enums.ReservationStatusPaid {
			t.Fatalf("confirm attempt %d: expected paid, got %s", i+1, result.Status)
		}
	}

	paidEvents := 0
	for _, e := range h.emitter.events {
		if e.EventType == enums.EventReservationPaid {
			paidEvents++
		}
	}
	if paidEvents != 1 {
		t.Fatalf("expected exactly one paid event, got %d", paidEvents)
	}
}

func TestConfirmWithoutIntent(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	_, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
	if err == nil {
		t.Fatalf("expected confirmation to fail without an intent")
	}
	if got := errorCheckTag(t, err); got != "missing_payment_intent" {
		t.Fatalf("expected missing_payment_intent check, got %q", got)
	}
}

func TestConfirmRejectsUnpaidIntent(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	if _, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID); err != nil {
		t.Fatalf("issue intent: %v", err)
	}

	_, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
	if err == nil {
		t.Fatalf("expected confirmation to fail for unpaid intent")
	}
	if got := errorCheckTag(t, err); got != "payment_not_succeeded" {
		t.Fatalf("expected payment_not_succeeded check, got %q", got)
	}
	if h.repo.reservations[dto.ID].Status != enums.ReservationStatusPending {
		t.Fatalf("expected status to remain pending")
	}
}

func TestConfirmRejectsAmountMismatch(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	if _, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID); err != nil {
		t.Fatalf("issue intent: %v", err)
	}
	intentID := *h.repo.reservations[dto.ID].StripePaymentIntentID
	h.payments.markSucceeded(intentID)
	// One cent short of the reservation total.
	h.payments.intents[intentID].Amount = 44999

	_, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
	if err == nil {
		t.Fatalf("expected confirmation to fail on amount mismatch")
	}
	if got := errorCheckTag(t, err); got != "amount_mismatch" {
		t.Fatalf("expected amount_mismatch check, got %q", got)
	}
	if h.repo.reservations[dto.ID].Status != enums.ReservationStatusPending {
		t.Fatalf("expected status to remain pending")
	}
}

func TestConfirmRejectsForeignMetadata(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	if _, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID); err != nil {
		t.Fatalf("issue intent: %v", err)
	}
	intentID := *h.repo.reservations[dto.ID].StripePaymentIntentID
	h.payments.markSucceeded(intentID)
	// Replayed intent originally issued for another booking.
	h.payments.intents[intentID].Metadata["reservation_id"] = uuid.NewString()

	_, err := h.svc.Confirm(context.Background(), h.userID, dto.ID)
	if err == nil {
		t.Fatalf("expected confirmation to fail on metadata mismatch")
	}
	if got := errorCheckTag(t, err); got != "metadata_mismatch" {
		t.Fatalf("expected metadata_mismatch check, got %q", got)
	}
}

func TestConfirmRejectsNonOwner(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	if _, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID); err != nil {
		t.Fatalf("issue intent: %v", err)
	}
	h.payments.markSucceeded(*h.repo.reservations[dto.ID].StripePaymentIntentID)

	_, err := h.svc.Confirm(context.Background(), uuid.New(), dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error for non-owner, got %v", err)
	}
}

func TestConfirmMissingReservation(t *testing.T) {
	h := newTestHarness(t, "150.00")

	_, err := h.svc.Confirm(context.Background(), h.userID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestIssueIntentOverwritesPreviousIntent(t *testing.T) {
	h := newTestHarness(t, "38.50")
	dto := h.createReservation(t, "2025-07-01", "2025-07-08")
	if !dto.Total.Equal(decimal.RequireFromString("269.50")) {
		t.Fatalf("expected total 269.50, got %s", dto.Total)
	}

	first, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	firstStored := *h.repo.reservations[dto.ID].StripePaymentIntentID

	second, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	secondStored := *h.repo.reservations[dto.ID].StripePaymentIntentID

	if firstStored == secondStored {
		t.Fatalf("expected the second intent to replace the first")
	}
	if first.AmountMinor != 26950 || second.AmountMinor != 26950 {
		t.Fatalf("expected both intents for 26950 minor units, got %d and %d", first.AmountMinor, second.AmountMinor)
	}
	if len(h.payments.created) != 2 {
		t.Fatalf("expected two provider intents, got %d", len(h.payments.created))
	}
}

func TestIssueIntentRequiresPendingStatus(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")
	h.repo.reservations[dto.ID].Status = enums.ReservationStatusCancelled

	_, err := h.svc.IssueIntent(context.Background(), h.userID, dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for cancelled reservation, got %v", err)
	}
}

func TestIssueIntentWithoutProvider(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	svc, err := NewService(ServiceParams{
		Repo:     h.repo,
		Vehicles: &stubVehicleFinder{vehicles: map[uuid.UUID]*models.Vehicle{h.vehicle.ID: h.vehicle}},
		Payments: nil,
		Tx:       stubTxRunner{},
		Outbox:   h.emitter,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.IssueIntent(context.Background(), h.userID, dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error without provider, got %v", err)
	}
}

func TestCreateRejectsSameDayRange(t *testing.T) {
	h := newTestHarness(t, "150.00")

	_, err := h.svc.Create(context.Background(), h.userID, CreateReservationInput{
		VehicleID: h.vehicle.ID,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-01",
	})
	if err == nil {
		t.Fatalf("expected same-day booking to be rejected")
	}
	if got := errorCheckTag(t, err); got != "invalid_date_range" {
		t.Fatalf("expected invalid_date_range check, got %q", got)
	}
}

func TestCreateRejectsUnavailableVehicle(t *testing.T) {
	h := newTestHarness(t, "150.00")
	h.vehicle.Available = false

	_, err := h.svc.Create(context.Background(), h.userID, CreateReservationInput{
		VehicleID: h.vehicle.ID,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-04",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for unavailable vehicle, got %v", err)
	}
}

func TestCancelLifecycle(t *testing.T) {
	h := newTestHarness(t, "150.00")
	dto := h.createReservation(t, "2025-06-01", "2025-06-04")

	cancelled, err := h.svc.Cancel(context.Background(), h.userID, dto.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.ReservationStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	_, err = h.svc.Cancel(context.Background(), h.userID, dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on second cancel, got %v", err)
	}
}
