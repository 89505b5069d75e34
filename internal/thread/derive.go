// Package thread derives chat-style conversation threads from booking and
// user records. Everything here is pure: callers pass the clock in.
package thread

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matheus3301/carelink/internal/identity"
	"github.com/matheus3301/carelink/internal/record"
)

// placeholderEmail is used when neither the booking nor a user record
// carries the patient's email.
const placeholderEmail = "patient@example.com"

// Canned message bodies for the synthesized history.
const (
	openerBody    = "Hello doctor, I hope you're doing well."
	replyBody     = "Hello! Thank you for reaching out. How can I help you today?"
	completedBody = "Thank you for visiting! How are you feeling after the session?"
	pendingBody   = "Hi! I'd like to confirm my appointment booking."
	confirmedBody = "Looking forward to our scheduled session!"
	defaultBody   = "Hello! Looking forward to connecting with you."
)

// seedNamespace makes seed-message IDs deterministic per patient and slot,
// so two derivation passes over the same snapshot produce identical IDs.
var seedNamespace = uuid.MustParse("9e336bdb-1f4a-4cab-90f2-06ef39c4a6fd")

// Derive computes the full conversation set for a provider from a snapshot
// of booking and user records. Deterministic for a fixed now.
//
// A booking qualifies when either its provider ID or its provider display
// name matches. The name leg is deliberately permissive and can over-match
// when two providers share a display name.
func Derive(bookings []record.Booking, users []record.User, provider identity.Provider, now time.Time) []Conversation {
	emails := make(map[string]string, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails[u.ID] = u.Email
		}
	}

	// Group matching bookings by patient, keeping first-seen order and the
	// latest booking per patient. Strictly-newer replacement means ties
	// resolve to the earlier record in snapshot order.
	latest := make(map[string]record.Booking)
	var order []string
	for _, b := range bookings {
		if !matchesProvider(&b, provider) {
			continue
		}
		cur, ok := latest[b.PatientID]
		if !ok {
			latest[b.PatientID] = b
			order = append(order, b.PatientID)
			continue
		}
		if b.RefTime().After(cur.RefTime()) {
			latest[b.PatientID] = b
		}
	}

	convs := make([]Conversation, 0, len(order))
	for _, pid := range order {
		b := latest[pid]
		convs = append(convs, conversationFor(&b, emails[pid], provider, now))
	}
	return convs
}

func matchesProvider(b *record.Booking, p identity.Provider) bool {
	if b.ProviderID != "" && b.ProviderID == p.ID {
		return true
	}
	return b.ProviderName != "" && b.ProviderName == p.Name
}

// lastMessageFor maps a booking status to the canned closing message and
// its unread count.
func lastMessageFor(status record.BookingStatus) (string, int) {
	switch status {
	case record.StatusCompleted:
		return completedBody, 0
	case record.StatusPendingConfirmation:
		return pendingBody, 1
	case record.StatusConfirmed:
		return confirmedBody, 0
	default:
		return defaultBody, 0
	}
}

// conversationFor builds one conversation from a patient's latest booking,
// seeding a three-message history anchored to now.
func conversationFor(b *record.Booking, userEmail string, provider identity.Provider, now time.Time) Conversation {
	closing, unread := lastMessageFor(b.Status)

	email := b.PatientEmail
	if email == "" {
		email = userEmail
	}
	if email == "" {
		email = placeholderEmail
	}

	msgs := []Message{
		{
			ID: seedID(b.PatientID, 1), SenderID: b.PatientID, SenderName: b.PatientName,
			Body: openerBody, Kind: KindText, SentAt: now.Add(-4 * time.Hour), Read: true,
		},
		{
			ID: seedID(b.PatientID, 2), SenderID: provider.ID, SenderName: provider.Name,
			Body: replyBody, Kind: KindText, SentAt: now.Add(-3 * time.Hour), Read: true,
		},
		{
			ID: seedID(b.PatientID, 3), SenderID: b.PatientID, SenderName: b.PatientName,
			Body: closing, Kind: KindText, SentAt: now.Add(-2 * time.Hour), Read: unread == 0,
		},
	}
	last := msgs[len(msgs)-1]

	return Conversation{
		ID:            b.PatientID,
		PatientName:   b.PatientName,
		PatientEmail:  email,
		LastMessage:   last.Body,
		LastMessageAt: last.SentAt,
		UnreadCount:   unread,
		Status:        PresenceAt(b.RefTime(), now),
		Messages:      msgs,
	}
}

func seedID(patientID string, slot int) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s/%d", patientID, slot))).String()
}
