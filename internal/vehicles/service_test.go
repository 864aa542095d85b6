package vehicles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

func TestServiceCreateValidVehicle(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	agencyID := uuid.New()
	dto, err := svc.Create(context.Background(), agencyID, CreateVehicleInput{
		Make:        "Renault",
		Model:       "Clio",
		Year:        2022,
		Category:    "city",
		PricePerDay: decimal.RequireFromString("38.50"),
		Features:    []string{"gps", "bluetooth"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.AgencyID != agencyID {
		t.Fatalf("expected agency %s, got %s", agencyID, dto.AgencyID)
	}
	if dto.Category != enums.VehicleCategoryCity {
		t.Fatalf("unexpected category %s", dto.Category)
	}
	if !dto.Available {
		t.Fatal("new vehicles should start available")
	}
	if dto.Currency != "eur" {
		t.Fatalf("unexpected currency %q", dto.Currency)
	}
}

func TestServiceCreateRejectsBadInput(t *testing.T) {
	svc, err := NewService(newStubRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name  string
		input CreateVehicleInput
	}{
		{"bad category", CreateVehicleInput{Make: "A", Model: "B", Year: 2020, Category: "hovercraft", PricePerDay: decimal.NewFromInt(10)}},
		{"zero price", CreateVehicleInput{Make: "A", Model: "B", Year: 2020, Category: "city", PricePerDay: decimal.Zero}},
		{"negative price", CreateVehicleInput{Make: "A", Model: "B", Year: 2020, Category: "city", PricePerDay: decimal.NewFromInt(-5)}},
		{"blank make", CreateVehicleInput{Make: " ", Model: "B", Year: 2020, Category: "city", PricePerDay: decimal.NewFromInt(10)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceUpdateForeignVehicleForbidden(t *testing.T) {
	repo := newStubRepo()
	owner := uuid.New()
	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		AgencyID:    owner,
		Make:        "Peugeot",
		Model:       "208",
		Year:        2021,
		Category:    enums.VehicleCategoryCity,
		PricePerDay: decimal.NewFromInt(40),
		Available:   true,
	}
	repo.vehicles[vehicle.ID] = vehicle

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	available := false
	_, err = svc.Update(context.Background(), uuid.New(), vehicle.ID, UpdateVehicleInput{Available: &available})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestServiceUpdateMutatesOwnedVehicle(t *testing.T) {
	repo := newStubRepo()
	owner := uuid.New()
	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		AgencyID:    owner,
		Make:        "Peugeot",
		Model:       "208",
		Year:        2021,
		Category:    enums.VehicleCategoryCity,
		PricePerDay: decimal.NewFromInt(40),
		Available:   true,
	}
	repo.vehicles[vehicle.ID] = vehicle

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	newPrice := decimal.RequireFromString("45.00")
	available := false
	dto, err := svc.Update(context.Background(), owner, vehicle.ID, UpdateVehicleInput{
		PricePerDay: &newPrice,
		Available:   &available,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !dto.PricePerDay.Equal(newPrice) {
		t.Fatalf("expected price %s, got %s", newPrice, dto.PricePerDay)
	}
	if dto.Available {
		t.Fatal("expected vehicle to be unavailable")
	}
}

func TestServiceGetMissingVehicle(t *testing.T) {
	svc, err := NewService(newStubRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubRepo struct {
	vehicles map[uuid.UUID]*models.Vehicle
}

func newStubRepo() *stubRepo {
	return &stubRepo{vehicles: map[uuid.UUID]*models.Vehicle{}}
}

func (s *stubRepo) Create(_ context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	s.vehicles[vehicle.ID] = vehicle
	return vehicle, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (s *stubRepo) ListByAgency(_ context.Context, agencyID uuid.UUID) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicle.AgencyID == agencyID {
			rows = append(rows, *vehicle)
		}
	}
	return rows, nil
}

func (s *stubRepo) Save(_ context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	s.vehicles[vehicle.ID] = vehicle
	return vehicle, nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.vehicles, id)
	return nil
}

func (s *stubRepo) ListCatalog(_ context.Context, _ catalogQuery) ([]models.Vehicle, string, error) {
	var rows []models.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicle.Available {
			rows = append(rows, *vehicle)
		}
	}
	return rows, "", nil
}
