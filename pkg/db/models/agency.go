package models

import (
	"time"

	"github.com/google/uuid"
)

// Agency is the tenant profile behind every fleet.
type Agency struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name        string     `gorm:"column:name;not null"`
	Description *string    `gorm:"column:description"`
	Phone       *string    `gorm:"column:phone"`
	Email       *string    `gorm:"column:email"`
	City        *string    `gorm:"column:city"`
	Premium     bool       `gorm:"column:premium;not null;default:false"`
	LastActive  *time.Time `gorm:"column:last_active_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
