package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
)

// Repository persists conversations and their messages.
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

// CreateConversation inserts a new thread.
func (r *Repository) CreateConversation(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// FindConversation loads a thread by id.
func (r *Repository) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindConversationBetween returns the existing thread for a client, agency
// and optional vehicle anchor, if any.
func (r *Repository) FindConversationBetween(ctx context.Context, clientID, agencyID uuid.UUID, vehicleID *uuid.UUID) (*models.Conversation, error) {
	query := r.db.WithContext(ctx).
		Where("client_id = ? AND agency_id = ?", clientID, agencyID)
	if vehicleID != nil {
		query = query.Where("vehicle_id = ?", *vehicleID)
	} else {
		query = query.Where("vehicle_id IS NULL")
	}

	var conversation models.Conversation
	if err := query.First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListByClient returns the client's threads, most recently touched first.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("client_id = ?", clientID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListByAgency returns the agency's threads, most recently touched first.
func (r *Repository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("agency_id = ?", agencyID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// CreateMessage appends a message and bumps the thread's updated_at so
// listings sort by recent activity.
func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", message.ConversationID).
		UpdateColumn("updated_at", time.Now().UTC()).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a thread's messages in chronological order.
func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// MarkRead stamps every unread message the reader did not send.
func (r *Repository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		UpdateColumn("read_at", at).Error
}
