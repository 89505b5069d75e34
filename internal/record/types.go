package record

import "time"

// BookingStatus is a booking lifecycle state. Stored as free-form text;
// statuses outside the known set are carried through untouched.
type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "pending_confirmation"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusCompleted           BookingStatus = "completed"
)

// Booking is a scheduled interaction between a patient and a provider.
// Bookings are written by other parts of the application; the core only
// reads them.
type Booking struct {
	ID            string
	PatientID     string
	PatientName   string
	PatientEmail  string
	ProviderID    string
	ProviderName  string
	Status        BookingStatus
	CreatedAt     time.Time // zero when unset
	AppointmentAt time.Time // zero when unset
}

// RefTime returns the booking's reference time: creation time when present,
// falling back to the appointment date. May be the zero time when the
// record carries neither.
func (b *Booking) RefTime() time.Time {
	if !b.CreatedAt.IsZero() {
		return b.CreatedAt
	}
	return b.AppointmentAt
}

// User is a registered application user, read only to backfill a patient's
// email when the booking record omits it.
type User struct {
	ID    string
	Name  string
	Email string
}
