package record

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matheus3301/carelink/internal/bus"
)

// UpsertBooking inserts or updates a booking and publishes a
// record.bookings_changed event.
func (db *DB) UpsertBooking(b *Booking) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO bookings (id, patient_id, patient_name, patient_email, provider_id, provider_name, status, created_at, appointment_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patient_id = excluded.patient_id,
			patient_name = excluded.patient_name,
			patient_email = excluded.patient_email,
			provider_id = excluded.provider_id,
			provider_name = excluded.provider_name,
			status = excluded.status,
			created_at = excluded.created_at,
			appointment_at = excluded.appointment_at,
			updated_at = excluded.updated_at`,
		b.ID, b.PatientID, b.PatientName, nullString(b.PatientEmail),
		b.ProviderID, b.ProviderName, string(b.Status),
		nullMilli(b.CreatedAt), nullMilli(b.AppointmentAt), now)
	if err != nil {
		return fmt.Errorf("upsert booking: %w", err)
	}
	db.notify(bus.KindBookingsChanged, b.ID)
	return nil
}

// DeleteBooking removes a booking and publishes a record.bookings_changed
// event. Deleting an unknown ID is a no-op.
func (db *DB) DeleteBooking(id string) error {
	if _, err := db.Exec(`DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	db.notify(bus.KindBookingsChanged, id)
	return nil
}

// ListBookings returns all bookings in insertion order. Query failures are
// reported as ErrUnavailable, rows that fail to scan or validate as
// ErrMalformed.
func (db *DB) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, patient_id, patient_name, patient_email, provider_id, provider_name, status, created_at, appointment_at
		FROM bookings
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: query bookings: %v", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		var email sql.NullString
		var createdAt, appointmentAt sql.NullInt64
		if err := rows.Scan(&b.ID, &b.PatientID, &b.PatientName, &email,
			&b.ProviderID, &b.ProviderName, (*string)(&b.Status),
			&createdAt, &appointmentAt); err != nil {
			return nil, fmt.Errorf("%w: scan booking: %v", ErrMalformed, err)
		}
		if b.PatientID == "" {
			return nil, fmt.Errorf("%w: booking %s has no patient id", ErrMalformed, b.ID)
		}
		b.PatientEmail = email.String
		b.CreatedAt = fromMilli(createdAt)
		b.AppointmentAt = fromMilli(appointmentAt)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read bookings: %v", ErrUnavailable, err)
	}
	return bookings, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullMilli(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func fromMilli(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64)
}
