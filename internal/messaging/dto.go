package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// Actor identifies the caller on every messaging operation. AgencyID is set
// only for agency-role users and grants access to the agency side of threads.
type Actor struct {
	UserID   uuid.UUID
	AgencyID *uuid.UUID
}

// StartConversationInput opens a thread with an agency, optionally anchored
// to a vehicle listing, and carries the opening message.
type StartConversationInput struct {
	AgencyID  uuid.UUID  `json:"agency_id" validate:"required"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	Body      string     `json:"body" validate:"required"`
}

// SendMessageInput appends a message to an existing thread.
type SendMessageInput struct {
	Body string `json:"body" validate:"required"`
}

// ConversationDTO is the transport shape for thread reads.
type ConversationDTO struct {
	ID          uuid.UUID   `json:"id"`
	ClientID    uuid.UUID   `json:"client_id"`
	AgencyID    uuid.UUID   `json:"agency_id"`
	VehicleID   *uuid.UUID  `json:"vehicle_id,omitempty"`
	LastMessage *MessageDTO `json:"last_message,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MessageDTO is the transport shape for a single message.
type MessageDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func conversationFromModel(c *models.Conversation) *ConversationDTO {
	if c == nil {
		return nil
	}
	dto := &ConversationDTO{
		ID:        c.ID,
		ClientID:  c.ClientID,
		AgencyID:  c.AgencyID,
		VehicleID: c.VehicleID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Messages) > 0 {
		dto.LastMessage = messageFromModel(&c.Messages[len(c.Messages)-1])
	}
	return dto
}

func messageFromModel(m *models.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
