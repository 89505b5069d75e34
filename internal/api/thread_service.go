// Package api is the in-process query/command surface consumed by the view
// layer. It exposes the engine's conversation collection read-only and
// accepts outbound message composition.
package api

import (
	"strings"

	"github.com/matheus3301/carelink/internal/sync"
	"github.com/matheus3301/carelink/internal/thread"
)

// ThreadService answers read queries over the live conversation set.
type ThreadService struct {
	engine *sync.Engine
}

// NewThreadService creates a thread service over the engine.
func NewThreadService(engine *sync.Engine) *ThreadService {
	return &ThreadService{engine: engine}
}

// Search returns conversations whose patient name or last message contains
// the term, case-insensitively. An empty term returns the whole collection
// in its current order.
func (s *ThreadService) Search(term string) []thread.Conversation {
	convs := s.engine.Snapshot()
	if term == "" {
		return convs
	}
	q := strings.ToLower(term)
	matched := convs[:0]
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.PatientName), q) ||
			strings.Contains(strings.ToLower(c.LastMessage), q) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Get returns one conversation by ID.
func (s *ThreadService) Get(id string) (thread.Conversation, error) {
	c, ok := s.engine.Get(id)
	if !ok {
		return thread.Conversation{}, &NotFoundError{ConversationID: id}
	}
	return c, nil
}
