package record

import (
	"context"
	"errors"
)

// ErrUnavailable indicates a transient store read failure. A refresh that
// hits it keeps the previously derived state and retries on the next tick.
var ErrUnavailable = errors.New("record store unavailable")

// ErrMalformed indicates a record that failed to scan or validate.
var ErrMalformed = errors.New("malformed record")

// Store is the read surface the sync engine depends on. Mutation
// notifications travel separately, over the event bus.
type Store interface {
	ListBookings(ctx context.Context) ([]Booking, error)
	ListUsers(ctx context.Context) ([]User, error)
}
