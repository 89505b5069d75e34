package api

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned by Send for text that is empty after
// trimming whitespace.
var ErrEmptyMessage = errors.New("message text is empty")

// NotFoundError is returned when a conversation ID resolves to nothing.
type NotFoundError struct {
	ConversationID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("conversation %q not found", e.ConversationID)
}
