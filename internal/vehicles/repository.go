package vehicles

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	"github.com/amartel/rentaride-backend/pkg/pagination"
)

// Repository wires together vehicle persistence helpers.
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

// Create inserts a new vehicle.
func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindByID loads the vehicle without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// ListByAgency returns the agency's whole fleet ordered by creation time.
func (r *Repository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// Save persists the mutable fields of an existing vehicle.
func (r *Repository) Save(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Save(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Delete removes a vehicle row by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Vehicle{}).Error
}

type catalogQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListCatalog returns one page of the public catalog. Only available vehicles
// are surfaced; premium agencies sort first when requested via filters.
func (r *Repository) ListCatalog(ctx context.Context, query catalogQuery) ([]models.Vehicle, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Table("vehicles v").
		Select("v.*").
		Joins("JOIN agencies a ON a.id = v.agency_id").
		Where("v.available = ?", true)

	filter := query.Filters
	if filter.Category != nil {
		qb = qb.Where("v.category = ?", *filter.Category)
	}
	if filter.City != nil {
		qb = qb.Where("LOWER(a.city) = ?", strings.ToLower(strings.TrimSpace(*filter.City)))
	}
	if filter.PriceMin != nil {
		qb = qb.Where("v.price_per_day >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb = qb.Where("v.price_per_day <= ?", *filter.PriceMax)
	}
	if filter.OnlyPremium {
		qb = qb.Where("a.premium = ?", true)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(v.make) LIKE ? OR LOWER(v.model) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(v.created_at < ?) OR (v.created_at = ? AND v.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("v.created_at DESC").Order("v.id DESC").Limit(limitWithBuffer)

	var records []models.Vehicle
	if err := qb.Scan(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return records, nextCursor, nil
}
