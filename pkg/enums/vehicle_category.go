package enums

import "fmt"

// VehicleCategory buckets the catalog for browsing filters.
type VehicleCategory string

const (
	VehicleCategoryCity        VehicleCategory = "city"
	VehicleCategoryCompact     VehicleCategory = "compact"
	VehicleCategorySedan       VehicleCategory = "sedan"
	VehicleCategorySUV         VehicleCategory = "suv"
	VehicleCategoryVan         VehicleCategory = "van"
	VehicleCategoryConvertible VehicleCategory = "convertible"
	VehicleCategoryMotorcycle  VehicleCategory = "motorcycle"
)

var validVehicleCategories = []VehicleCategory{
	VehicleCategoryCity,
	VehicleCategoryCompact,
	VehicleCategorySedan,
	VehicleCategorySUV,
	VehicleCategoryVan,
	VehicleCategoryConvertible,
	VehicleCategoryMotorcycle,
}

func (v VehicleCategory) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleCategory.
func (v VehicleCategory) IsValid() bool {
	for _, candidate := range validVehicleCategories {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleCategory converts raw input into a VehicleCategory.
func ParseVehicleCategory(value string) (VehicleCategory, error) {
	for _, candidate := range validVehicleCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle category %q", value)
}
