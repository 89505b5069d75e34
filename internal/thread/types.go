package thread

import "time"

// Presence is a conversation's computed availability bucket.
type Presence string

const (
	Online  Presence = "online"
	Away    Presence = "away"
	Offline Presence = "offline"
)

// MessageKind is a message content type. Only text is produced today;
// image and file are reserved.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

// Message is a single entry in a conversation's history. Immutable once
// created except for the Read flag.
type Message struct {
	ID         string
	SenderID   string
	SenderName string
	Body       string
	Kind       MessageKind
	SentAt     time.Time
	Read       bool
}

// Conversation is the per-patient derived thread shown to a provider.
// Its ID is the patient ID: all of a patient's bookings with the current
// provider collapse into one conversation. LastMessage and LastMessageAt
// mirror the chronologically last entry of Messages.
type Conversation struct {
	ID            string
	PatientName   string
	PatientEmail  string
	LastMessage   string
	LastMessageAt time.Time
	UnreadCount   int
	Status        Presence
	Messages      []Message
}
