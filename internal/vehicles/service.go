package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
)

// Service defines the fleet and catalog surface.
type Service interface {
	Create(ctx context.Context, agencyID uuid.UUID, input CreateVehicleInput) (*VehicleDTO, error)
	Update(ctx context.Context, agencyID, vehicleID uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	Delete(ctx context.Context, agencyID, vehicleID uuid.UUID) error
	Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error)
	ListFleet(ctx context.Context, agencyID uuid.UUID) ([]VehicleDTO, error)
	ListCatalog(ctx context.Context, input ListInput) (*ListResult, error)
}

type vehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Vehicle, error)
	Save(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListCatalog(ctx context.Context, query catalogQuery) ([]models.Vehicle, string, error)
}

type service struct {
	repo vehicleRepository
}

// NewService builds the vehicle service.
func NewService(repo vehicleRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, agencyID uuid.UUID, input CreateVehicleInput) (*VehicleDTO, error) {
	if agencyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agency id required")
	}
	category, err := enums.ParseVehicleCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle category")
	}
	if input.PricePerDay.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must be positive")
	}
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "make and model are required")
	}

	vehicle := &models.Vehicle{
		AgencyID:    agencyID,
		Make:        strings.TrimSpace(input.Make),
		Model:       strings.TrimSpace(input.Model),
		Year:        input.Year,
		Category:    category,
		PricePerDay: input.PricePerDay,
		Currency:    "eur",
		Features:    pq.StringArray(input.Features),
		ImageURL:    input.ImageURL,
		Available:   true,
	}
	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vehicle")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, agencyID, vehicleID uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	vehicle, err := s.loadOwned(ctx, agencyID, vehicleID)
	if err != nil {
		return nil, err
	}

	if input.Make != nil {
		vehicle.Make = strings.TrimSpace(*input.Make)
	}
	if input.Model != nil {
		vehicle.Model = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.Category != nil {
		category, err := enums.ParseVehicleCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle category")
		}
		vehicle.Category = category
	}
	if input.PricePerDay != nil {
		if input.PricePerDay.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must be positive")
		}
		vehicle.PricePerDay = *input.PricePerDay
	}
	if input.Features != nil {
		vehicle.Features = pq.StringArray(input.Features)
	}
	if input.ImageURL != nil {
		vehicle.ImageURL = input.ImageURL
	}
	if input.Available != nil {
		vehicle.Available = *input.Available
	}

	saved, err := s.repo.Save(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update vehicle")
	}
	return FromModel(saved), nil
}

func (s *service) Delete(ctx context.Context, agencyID, vehicleID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, agencyID, vehicleID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, vehicleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vehicle")
	}
	return nil
}

func (s *service) Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) ListFleet(ctx context.Context, agencyID uuid.UUID) ([]VehicleDTO, error) {
	if agencyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agency id required")
	}
	rows, err := s.repo.ListByAgency(ctx, agencyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list fleet")
	}
	fleet := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		fleet = append(fleet, *FromModel(&rows[i]))
	}
	return fleet, nil
}

func (s *service) ListCatalog(ctx context.Context, input ListInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListCatalog(ctx, catalogQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog")
	}
	page := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		page = append(page, *FromModel(&rows[i]))
	}
	return &ListResult{Vehicles: page, NextCursor: nextCursor}, nil
}

func (s *service) loadOwned(ctx context.Context, agencyID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vehicle")
	}
	if vehicle.AgencyID != agencyID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vehicle belongs to another agency")
	}
	return vehicle, nil
}
