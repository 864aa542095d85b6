package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation threads messages between a client and an agency, optionally
// anchored to a vehicle listing.
type Conversation struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID  uuid.UUID  `gorm:"column:client_id;type:uuid;not null;index"`
	AgencyID  uuid.UUID  `gorm:"column:agency_id;type:uuid;not null;index"`
	VehicleID *uuid.UUID `gorm:"column:vehicle_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// Message is a single entry inside a conversation.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Body           string     `gorm:"column:body;not null"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
