package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/recon"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrNotParticipant = errors.New("user is not a participant of this conversation")
	ErrEmptyMessage   = errors.New("message text is empty")
)

type Service struct {
	store docstore.Client
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(store docstore.Client, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   logger.With().Str("component", "chat").Logger(),
		now:   time.Now,
	}
}

// ListConversations returns every conversation the user takes part in,
// newest activity first. Records without an id are dropped.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	var docs []docstore.Document
	for _, field := range []string{"patientId", "specialistId"} {
		batch, err := s.store.GetCollectionByFilter(ctx, Collection, field, userID)
		if err != nil {
			return nil, fmt.Errorf("list conversations: %w", err)
		}
		docs = append(docs, batch...)
	}

	seen := make(map[string]struct{}, len(docs))
	conversations := []Conversation{}
	for _, doc := range docs {
		conv := shapeConversation(doc)
		if conv.ID == "" {
			s.log.Debug().Str("user", userID).Msg("dropping malformed conversation record")
			continue
		}
		if _, dup := seen[conv.ID]; dup {
			continue
		}
		seen[conv.ID] = struct{}{}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt > conversations[j].LastMessageAt
	})
	return conversations, nil
}

// ListMessages returns the conversation's messages oldest first. The caller
// must be a participant.
func (s *Service) ListMessages(ctx context.Context, conversationID, userID string) ([]Message, error) {
	if _, err := s.conversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	docs, err := s.store.GetCollectionByFilter(ctx, MessagesCollection(conversationID), "conversationId", conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages %s: %w", conversationID, err)
	}

	messages := []Message{}
	for _, doc := range docs {
		msg := shapeMessage(doc)
		if msg.ID == "" {
			continue
		}
		messages = append(messages, msg)
	}
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].SentAt < messages[j].SentAt })
	return messages, nil
}

// SendMessage appends a message to the conversation and stamps the
// conversation's last-message fields. The conversation write is what the
// realtime bridge fans out to topic subscribers. Nothing is considered sent
// until both writes succeed.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.conversation(ctx, conversationID, senderID); err != nil {
		return nil, err
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		SentAt:         s.now().UTC().Format(time.RFC3339),
	}
	path := docstore.JoinPath(MessagesCollection(conversationID), msg.ID)
	err := s.store.SetDocument(ctx, path, docstore.Document{
		"id":             msg.ID,
		"conversationId": msg.ConversationID,
		"senderId":       msg.SenderID,
		"text":           msg.Text,
		"sentAt":         msg.SentAt,
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	err = s.store.UpdateDocument(ctx, docstore.JoinPath(Collection, conversationID), docstore.Document{
		"lastMessage":   msg.Text,
		"lastMessageAt": msg.SentAt,
		"lastSenderId":  msg.SenderID,
	})
	if err != nil {
		return nil, fmt.Errorf("stamp conversation %s: %w", conversationID, err)
	}
	return &msg, nil
}

func (s *Service) conversation(ctx context.Context, conversationID, userID string) (docstore.Document, error) {
	doc, err := s.store.GetDocument(ctx, docstore.JoinPath(Collection, conversationID))
	if err != nil {
		return nil, fmt.Errorf("read conversation %s: %w", conversationID, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	patient := recon.Resolve(doc, []string{"patientId"}, "")
	specialist := recon.Resolve(doc, []string{"specialistId"}, "")
	if userID != patient && userID != specialist {
		return nil, ErrNotParticipant
	}
	return doc, nil
}

func shapeConversation(doc docstore.Document) Conversation {
	return Conversation{
		ID:             recon.Resolve(doc, []string{"id"}, ""),
		PatientID:      recon.Resolve(doc, []string{"patientId"}, ""),
		SpecialistID:   recon.Resolve(doc, []string{"specialistId"}, ""),
		PatientName:    recon.Resolve(doc, []string{"patientName"}, recon.UnknownPatient),
		SpecialistName: recon.DoctorName(recon.Resolve(doc, []string{"specialistName"}, "")),
		LastMessage:    recon.Resolve(doc, []string{"lastMessage"}, ""),
		LastMessageAt:  recon.Resolve(doc, []string{"lastMessageAt"}, ""),
	}
}

func shapeMessage(doc docstore.Document) Message {
	return Message{
		ID:             recon.Resolve(doc, []string{"id"}, ""),
		ConversationID: recon.Resolve(doc, []string{"conversationId"}, ""),
		SenderID:       recon.Resolve(doc, []string{"senderId"}, ""),
		Text:           recon.Resolve(doc, []string{"text"}, ""),
		SentAt:         recon.Resolve(doc, []string{"sentAt"}, ""),
	}
}
