package bus

import "time"

// Event kinds published by the core. Subscribers filter by prefix, so
// "record." matches every record mutation kind.
const (
	KindBookingsChanged = "record.bookings_changed"
	KindUsersChanged    = "record.users_changed"
	KindIdentityChanged = "identity.changed"
	KindEngineState     = "sync.state_changed"
	KindRefreshed       = "sync.refreshed"
	KindMessageSent     = "conversation.message_sent"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
