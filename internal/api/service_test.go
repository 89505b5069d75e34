package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/carelink/internal/bus"
	"github.com/matheus3301/carelink/internal/identity"
	"github.com/matheus3301/carelink/internal/record"
	intsync "github.com/matheus3301/carelink/internal/sync"
)

var testProvider = identity.Provider{ID: "prov-1", Name: "Dr. Adams"}

type staticStore struct {
	bookings []record.Booking
	users    []record.User
}

func (s *staticStore) ListBookings(_ context.Context) ([]record.Booking, error) {
	return s.bookings, nil
}

func (s *staticStore) ListUsers(_ context.Context) ([]record.User, error) {
	return s.users, nil
}

// testEngine builds an engine over two conversations: Ana (completed) and
// Bruno (pending confirmation).
func testEngine(t *testing.T, b *bus.Bus) *intsync.Engine {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &staticStore{bookings: []record.Booking{
		{ID: "b1", PatientID: "p1", PatientName: "Ana Lima", ProviderID: "prov-1",
			Status: record.StatusCompleted, CreatedAt: now.Add(-time.Hour)},
		{ID: "b2", PatientID: "p2", PatientName: "Bruno Costa", ProviderID: "prov-1",
			Status: record.StatusPendingConfirmation, CreatedAt: now.Add(-3 * time.Hour)},
	}}
	ids := identity.NewManager(testProvider, b)
	e := intsync.NewEngine(store, b, ids, nil, nil, intsync.Options{
		Interval: time.Hour,
		Now:      func() time.Time { return now },
	})
	e.Refresh(context.Background())
	return e
}

func TestSearchEmptyTermReturnsAll(t *testing.T) {
	e := testEngine(t, bus.New())
	svc := NewThreadService(e)

	convs := svc.Search("")
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].ID != "p1" || convs[1].ID != "p2" {
		t.Errorf("order = [%s %s], want collection order [p1 p2]", convs[0].ID, convs[1].ID)
	}
}

func TestSearchCaseInsensitiveName(t *testing.T) {
	e := testEngine(t, bus.New())
	svc := NewThreadService(e)

	convs := svc.Search("ANA")
	if len(convs) != 1 || convs[0].ID != "p1" {
		t.Fatalf("Search(ANA) = %d results, want just p1", len(convs))
	}
}

func TestSearchMatchesLastMessage(t *testing.T) {
	e := testEngine(t, bus.New())
	svc := NewThreadService(e)

	// Bruno's pending booking yields the confirmation-request message.
	convs := svc.Search("confirm my appointment")
	if len(convs) != 1 || convs[0].ID != "p2" {
		t.Fatalf("Search on last message = %d results, want just p2", len(convs))
	}
}

func TestSearchNoMatch(t *testing.T) {
	e := testEngine(t, bus.New())
	svc := NewThreadService(e)

	if convs := svc.Search("zzz-no-such"); len(convs) != 0 {
		t.Errorf("got %d results, want 0", len(convs))
	}
}

func TestGetNotFound(t *testing.T) {
	e := testEngine(t, bus.New())
	svc := NewThreadService(e)

	_, err := svc.Get("ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if nf.ConversationID != "ghost" {
		t.Errorf("ConversationID = %q, want ghost", nf.ConversationID)
	}
}

func TestSendAppendsMessage(t *testing.T) {
	b := bus.New()
	e := testEngine(t, b)
	ids := identity.NewManager(testProvider, b)
	svc := NewComposeService(e, ids, b)

	ch, unsub := b.Subscribe("conversation.", 10)
	defer unsub()

	msg, err := svc.Send("p1", "  See you next week.  ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Body != "See you next week." {
		t.Errorf("body = %q, want trimmed text", msg.Body)
	}
	if msg.SenderID != "prov-1" || !msg.Read {
		t.Errorf("message = %+v, want provider-sent and read", msg)
	}

	c, _ := e.Get("p1")
	if len(c.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(c.Messages))
	}
	if c.LastMessage != "See you next week." || !c.LastMessageAt.Equal(msg.SentAt) {
		t.Error("denormalized last-message fields not updated")
	}

	select {
	case evt := <-ch:
		sent, ok := evt.Payload.(MessageSent)
		if !ok {
			t.Fatalf("payload type = %T, want MessageSent", evt.Payload)
		}
		if sent.ConversationID != "p1" || sent.MessageID != msg.ID {
			t.Errorf("event payload = %+v", sent)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message_sent event")
	}
}

func TestSendEmptyText(t *testing.T) {
	b := bus.New()
	e := testEngine(t, b)
	svc := NewComposeService(e, identity.NewManager(testProvider, b), b)

	_, err := svc.Send("p1", "   \t\n ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("error = %v, want ErrEmptyMessage", err)
	}

	c, _ := e.Get("p1")
	if len(c.Messages) != 3 {
		t.Errorf("message sequence changed on invalid input: %d messages", len(c.Messages))
	}
}

func TestSendUnknownConversation(t *testing.T) {
	b := bus.New()
	e := testEngine(t, b)
	svc := NewComposeService(e, identity.NewManager(testProvider, b), b)

	_, err := svc.Send("ghost", "hello")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if len(e.Snapshot()) != 2 {
		t.Error("global state changed on NotFound send")
	}
}
