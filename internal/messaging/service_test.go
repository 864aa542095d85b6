package messaging

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amartel/rentaride-backend/pkg/db/models"
	pkgerrors "github.com/amartel/rentaride-backend/pkg/errors"
	"github.com/amartel/rentaride-backend/pkg/logger"
)

type stubConversationRepo struct {
	conversations map[uuid.UUID]*models.Conversation
	messages      []*models.Message
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{conversations: make(map[uuid.UUID]*models.Conversation)}
}

func (s *stubConversationRepo) CreateConversation(_ context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	conversation.ID = uuid.New()
	s.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (s *stubConversationRepo) FindConversation(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	conversation, ok := s.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return conversation, nil
}

func (s *stubConversationRepo) FindConversationBetween(_ context.Context, clientID, agencyID uuid.UUID, vehicleID *uuid.UUID) (*models.Conversation, error) {
	for _, c := range s.conversations {
		if c.ClientID != clientID || c.AgencyID != agencyID {
			continue
		}
		if (c.VehicleID == nil) != (vehicleID == nil) {
			continue
		}
		if vehicleID == nil || *c.VehicleID == *vehicleID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubConversationRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubConversationRepo) ListByAgency(_ context.Context, agencyID uuid.UUID) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.AgencyID == agencyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubConversationRepo) CreateMessage(_ context.Context, message *models.Message) (*models.Message, error) {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, message)
	return message, nil
}

func (s *stubConversationRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *stubConversationRepo) MarkRead(_ context.Context, conversationID, readerID uuid.UUID, at time.Time) error {
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && m.ReadAt == nil {
			stamped := at
			m.ReadAt = &stamped
		}
	}
	return nil
}

type stubAgencyChecker struct {
	agency *models.Agency
}

func (s *stubAgencyChecker) FindByID(_ context.Context, id uuid.UUID) (*models.Agency, error) {
	if s.agency == nil || s.agency.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.agency, nil
}

func newMessagingService(t *testing.T, repo *stubConversationRepo, agency *models.Agency) Service {
	t.Helper()
	svc, err := NewService(repo, &stubAgencyChecker{agency: agency},
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestStartConversationAndReply(t *testing.T) {
	repo := newStubConversationRepo()
	agency := &models.Agency{ID: uuid.New(), OwnerID: uuid.New(), Name: "City Wheels"}
	svc := newMessagingService(t, repo, agency)

	client := Actor{UserID: uuid.New()}
	conversation, err := svc.Start(context.Background(), client, StartConversationInput{
		AgencyID: agency.ID,
		Body:     "Is the Clio free next weekend?",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if conversation.LastMessage == nil || conversation.LastMessage.Body != "Is the Clio free next weekend?" {
		t.Fatalf("expected the opening message on the thread, got %+v", conversation.LastMessage)
	}

	agent := Actor{UserID: agency.OwnerID, AgencyID: &agency.ID}
	reply, err := svc.Send(context.Background(), agent, conversation.ID, SendMessageInput{Body: "Yes, both days."})
	if err != nil {
		t.Fatalf("send reply: %v", err)
	}
	if reply.SenderID != agency.OwnerID {
		t.Fatalf("expected reply from agency owner")
	}

	messages, err := svc.Messages(context.Background(), client, conversation.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
}

func TestStartReusesExistingThread(t *testing.T) {
	repo := newStubConversationRepo()
	agency := &models.Agency{ID: uuid.New(), OwnerID: uuid.New()}
	svc := newMessagingService(t, repo, agency)
	client := Actor{UserID: uuid.New()}

	first, err := svc.Start(context.Background(), client, StartConversationInput{AgencyID: agency.ID, Body: "hello"})
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := svc.Start(context.Background(), client, StartConversationInput{AgencyID: agency.ID, Body: "still there?"})
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected both messages on the same thread")
	}
	if len(repo.conversations) != 1 {
		t.Fatalf("expected a single conversation, got %d", len(repo.conversations))
	}
}

func TestMessagingRejectsOutsiders(t *testing.T) {
	repo := newStubConversationRepo()
	agency := &models.Agency{ID: uuid.New(), OwnerID: uuid.New()}
	svc := newMessagingService(t, repo, agency)
	client := Actor{UserID: uuid.New()}

	conversation, err := svc.Start(context.Background(), client, StartConversationInput{AgencyID: agency.ID, Body: "hello"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	outsider := Actor{UserID: uuid.New()}
	_, err = svc.Messages(context.Background(), outsider, conversation.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}

	otherAgency := uuid.New()
	_, err = svc.Send(context.Background(), Actor{UserID: uuid.New(), AgencyID: &otherAgency}, conversation.ID, SendMessageInput{Body: "hi"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign agency, got %v", err)
	}
}

func TestMarkReadStampsOnlyOthersMessages(t *testing.T) {
	repo := newStubConversationRepo()
	agency := &models.Agency{ID: uuid.New(), OwnerID: uuid.New()}
	svc := newMessagingService(t, repo, agency)
	client := Actor{UserID: uuid.New()}
	agent := Actor{UserID: agency.OwnerID, AgencyID: &agency.ID}

	conversation, err := svc.Start(context.Background(), client, StartConversationInput{AgencyID: agency.ID, Body: "hello"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Send(context.Background(), agent, conversation.ID, SendMessageInput{Body: "hi back"}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	if err := svc.MarkRead(context.Background(), client, conversation.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	for _, m := range repo.messages {
		fromClient := m.SenderID == client.UserID
		if fromClient && m.ReadAt != nil {
			t.Fatalf("client's own message should stay unread")
		}
		if !fromClient && m.ReadAt == nil {
			t.Fatalf("agency message should be marked read")
		}
	}
}

func TestSendValidatesBody(t *testing.T) {
	repo := newStubConversationRepo()
	agency := &models.Agency{ID: uuid.New(), OwnerID: uuid.New()}
	svc := newMessagingService(t, repo, agency)
	client := Actor{UserID: uuid.New()}

	conversation, err := svc.Start(context.Background(), client, StartConversationInput{AgencyID: agency.ID, Body: "hello"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = svc.Send(context.Background(), client, conversation.ID, SendMessageInput{Body: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank body, got %v", err)
	}
}
