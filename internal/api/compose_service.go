package api

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matheus3301/carelink/internal/bus"
	"github.com/matheus3301/carelink/internal/identity"
	"github.com/matheus3301/carelink/internal/sync"
	"github.com/matheus3301/carelink/internal/thread"
)

// ComposeService appends outbound messages to conversations. Delivery to a
// counterparty is owned by an external transport; nothing here leaves the
// process.
type ComposeService struct {
	engine   *sync.Engine
	identity *identity.Manager
	bus      *bus.Bus
	now      func() time.Time
}

// NewComposeService creates a compose service for the current identity.
func NewComposeService(engine *sync.Engine, ids *identity.Manager, b *bus.Bus) *ComposeService {
	return &ComposeService{engine: engine, identity: ids, bus: b, now: time.Now}
}

// Send validates and appends a message to the conversation's history,
// updating its denormalized last-message fields. Fails with ErrEmptyMessage
// for whitespace-only text and NotFoundError for an unknown conversation;
// neither failure changes any state.
func (s *ComposeService) Send(conversationID, text string) (thread.Message, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return thread.Message{}, ErrEmptyMessage
	}

	provider := s.identity.Current()
	msg := thread.Message{
		ID:         uuid.NewString(),
		SenderID:   provider.ID,
		SenderName: provider.Name,
		Body:       body,
		Kind:       thread.KindText,
		SentAt:     s.now(),
		Read:       true,
	}

	if !s.engine.Append(conversationID, msg) {
		return thread.Message{}, &NotFoundError{ConversationID: conversationID}
	}

	if s.bus != nil {
		s.bus.Publish(bus.Event{
			Kind:      bus.KindMessageSent,
			Timestamp: msg.SentAt,
			Payload: MessageSent{
				ConversationID: conversationID,
				MessageID:      msg.ID,
			},
		})
	}
	return msg, nil
}

// MessageSent is the payload for conversation.message_sent events.
type MessageSent struct {
	ConversationID string
	MessageID      string
}
