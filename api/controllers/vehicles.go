package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amartel/rentaride-backend/api/middleware"
	"github.com/amartel/rentaride-backend/api/responses"
	"github.com/amartel/rentaride-backend/api/validators"
	vehiclesvc "github.com/amartel/rentaride-backend/internal/vehicles"
	"github.com/amartel/rentaride-backend/pkg/enums"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
	"github.com/amartel/rentaride-backend/pkg/pagination"
)

const maxSearchQueryLength = 120

// ListCatalog serves the public vehicle catalog with cursor pagination.
func ListCatalog(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseCatalogFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCatalog(r.Context(), vehiclesvc.ListInput{
			Filters: filters,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetVehicle serves a single catalog vehicle.
func GetVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id"))
			return
		}

		vehicle, err := svc.Get(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AgencyListFleet serves the authenticated agency's own fleet.
func AgencyListFleet(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		agencyID, err := requireAgencyID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fleet, err := svc.ListFleet(r.Context(), agencyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, fleet)
	}
}

// AgencyCreateVehicle adds a vehicle to the agency fleet.
func AgencyCreateVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		agencyID, err := requireAgencyID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehiclesvc.CreateVehicleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Create(r.Context(), agencyID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// AgencyUpdateVehicle mutates a fleet vehicle owned by the agency.
func AgencyUpdateVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		agencyID, err := requireAgencyID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id"))
			return
		}

		var payload vehiclesvc.UpdateVehicleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Update(r.Context(), agencyID, vehicleID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AgencyDeleteVehicle removes a fleet vehicle owned by the agency.
func AgencyDeleteVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		agencyID, err := requireAgencyID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuid.Parse(chi.URLParam(r, "vehicleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id"))
			return
		}

		if err := svc.Delete(r.Context(), agencyID, vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseCatalogFilters(r *http.Request) (vehiclesvc.ListFilters, error) {
	filters := vehiclesvc.ListFilters{
		Query: validators.SanitizeString(r.URL.Query().Get("q"), maxSearchQueryLength),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseVehicleCategory(raw)
		if err != nil {
			return vehiclesvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filters.Category = &category
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("city")); raw != "" {
		city := validators.SanitizeString(raw, maxSearchQueryLength)
		filters.City = &city
	}

	priceMin, err := validators.ParseQueryDecimal(r, "price_min")
	if err != nil {
		return vehiclesvc.ListFilters{}, err
	}
	filters.PriceMin = priceMin

	priceMax, err := validators.ParseQueryDecimal(r, "price_max")
	if err != nil {
		return vehiclesvc.ListFilters{}, err
	}
	filters.PriceMax = priceMax

	if priceMin != nil && priceMax != nil && priceMax.LessThan(*priceMin) {
		return vehiclesvc.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "price_max must be greater than price_min")
	}

	filters.OnlyPremium = r.URL.Query().Get("premium") == "true"

	return filters, nil
}

func requireAgencyID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AgencyIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "agency context missing")
	}
	agencyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agency id")
	}
	return agencyID, nil
}
