package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
)

const maxMessageLength = 4000

// Service defines the messaging surface exposed to controllers.
type Service interface {
	Start(ctx context.Context, actor Actor, input StartConversationInput) (*ConversationDTO, error)
	List(ctx context.Context, actor Actor) ([]ConversationDTO, error)
	Messages(ctx context.Context, actor Actor, conversationID uuid.UUID) ([]MessageDTO, error)
	Send(ctx context.Context, actor Actor, conversationID uuid.UUID, input SendMessageInput) (*MessageDTO, error)
	MarkRead(ctx context.Context, actor Actor, conversationID uuid.UUID) error
}

type conversationRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error)
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindConversationBetween(ctx context.Context, clientID, agencyID uuid.UUID, vehicleID *uuid.UUID) (*models.Conversation, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Conversation, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) error
}

type agencyChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agency, error)
}

type service struct {
	repo     conversationRepository
	agencies agencyChecker
	logg     *logger.Logger
}

// NewService constructs the messaging service.
func NewService(repo conversationRepository, agencies agencyChecker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversation repository is required")
	}
	if agencies == nil {
		return nil, fmt.Errorf("agency checker is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, agencies: agencies, logg: logg}, nil
}

func (s *service) Start(ctx context.Context, actor Actor, input StartConversationInput) (*ConversationDTO, error) {
	body, err := normalizeBody(input.Body)
	if err != nil {
		return nil, err
	}
	if actor.AgencyID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agencies reply to threads, clients open them")
	}
	if _, err := s.agencies.FindByID(ctx, input.AgencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agency not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agency")
	}

	conversation, err := s.repo.FindConversationBetween(ctx, actor.UserID, input.AgencyID, input.VehicleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conversation, err = s.repo.CreateConversation(ctx, &models.Conversation{
			ClientID:  actor.UserID,
			AgencyID:  input.AgencyID,
			VehicleID: input.VehicleID,
		})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open conversation")
	}

	message, err := s.repo.CreateMessage(ctx, &models.Message{
		ConversationID: conversation.ID,
		SenderID:       actor.UserID,
		Body:           body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "send opening message")
	}

	dto := conversationFromModel(conversation)
	dto.LastMessage = messageFromModel(message)
	s.logg.Info(s.logg.WithField(ctx, "conversation_id", conversation.ID.String()), "conversation opened")
	return dto, nil
}

func (s *service) List(ctx context.Context, actor Actor) ([]ConversationDTO, error) {
	var (
		rows []models.Conversation
		err  error
	)
	if actor.AgencyID != nil {
		rows, err = s.repo.ListByAgency(ctx, *actor.AgencyID)
	} else {
		rows, err = s.repo.ListByClient(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list conversations")
	}

	out := make([]ConversationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *conversationFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Messages(ctx context.Context, actor Actor, conversationID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.loadParticipant(ctx, actor, conversationID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}

	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *messageFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Send(ctx context.Context, actor Actor, conversationID uuid.UUID, input SendMessageInput) (*MessageDTO, error) {
	body, err := normalizeBody(input.Body)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadParticipant(ctx, actor, conversationID); err != nil {
		return nil, err
	}

	message, err := s.repo.CreateMessage(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		Body:           body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "send message")
	}
	return messageFromModel(message), nil
}

func (s *service) MarkRead(ctx context.Context, actor Actor, conversationID uuid.UUID) error {
	if _, err := s.loadParticipant(ctx, actor, conversationID); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, conversationID, actor.UserID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark messages read")
	}
	return nil
}

// loadParticipant enforces that the caller sits on one side of the thread.
func (s *service) loadParticipant(ctx context.Context, actor Actor, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load conversation")
	}

	if conversation.ClientID == actor.UserID {
		return conversation, nil
	}
	if actor.AgencyID != nil && conversation.AgencyID == *actor.AgencyID {
		return conversation, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this conversation")
}

func normalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxMessageLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message body is too long")
	}
	return body, nil
}
