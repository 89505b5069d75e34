// Package sync owns the live conversation set: it re-derives the set from
// the record store on a fixed interval and on mutation or identity events,
// and merges each pass into the collection readers observe.
package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/carelink/internal/bus"
	"github.com/matheus3301/carelink/internal/identity"
	"github.com/matheus3301/carelink/internal/record"
	"github.com/matheus3301/carelink/internal/status"
	"github.com/matheus3301/carelink/internal/thread"
)

// DefaultInterval is the polling period used when Options does not set one.
const DefaultInterval = 10 * time.Second

// Options tunes the engine. Now exists so tests can pin the clock.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
}

// Engine keeps the derived conversation collection live. All writes happen
// inside serialized refresh passes or the composer's Append; readers always
// observe a fully merged collection.
type Engine struct {
	store    record.Store
	bus      *bus.Bus
	identity *identity.Manager
	machine  *status.Machine
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	order []string
	live  map[string]*entry

	refreshMu sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// entry pairs a live conversation with the fingerprint of the derivation
// pass that produced it. Timestamp-bearing fields are excluded from the
// fingerprint, so seed-message drift between ticks never counts as change.
type entry struct {
	conv thread.Conversation
	fp   uint64
}

// NewEngine creates an engine over the given store and identity. A nil
// machine or logger gets a private default.
func NewEngine(store record.Store, b *bus.Bus, ids *identity.Manager, m *status.Machine, logger *zap.Logger, opts Options) *Engine {
	if m == nil {
		m = status.NewMachine(b)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:    store,
		bus:      b,
		identity: ids,
		machine:  m,
		logger:   logger,
		interval: interval,
		now:      now,
		live:     make(map[string]*entry),
	}
}

// Machine exposes the engine's state machine for observers.
func (e *Engine) Machine() *status.Machine {
	return e.machine
}

// Start runs an initial refresh and then loops on the poll ticker and on
// record./identity. bus events until the context is canceled or Stop is
// called. Triggers arriving mid-refresh sit in the subscription buffers
// and coalesce into one follow-up pass.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	recCh, unsubRec := e.bus.Subscribe("record.", 64)
	idCh, unsubID := e.bus.Subscribe("identity.", 8)

	go func() {
		defer close(e.done)
		defer unsubRec()
		defer unsubID()

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		e.Refresh(ctx)

		for {
			select {
			case <-ticker.C:
				e.Refresh(ctx)
			case <-recCh:
				drain(recCh)
				e.Refresh(ctx)
			case <-idCh:
				drain(idCh)
				e.Refresh(ctx)
			case <-ctx.Done():
				_ = e.machine.Transition(status.Stopped)
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. No refresh mutates state
// after Stop returns.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

// Refresh runs one synchronous derivation pass. Passes are serialized;
// a store read failure abandons the pass and keeps the previous collection.
func (e *Engine) Refresh(ctx context.Context) {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	_ = e.machine.Transition(status.Refreshing)
	defer func() { _ = e.machine.Transition(status.Idle) }()

	bookings, err := e.store.ListBookings(ctx)
	if err != nil {
		e.logger.Warn("refresh abandoned, keeping previous conversations", zap.Error(err))
		return
	}
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		e.logger.Warn("refresh abandoned, keeping previous conversations", zap.Error(err))
		return
	}

	derived := thread.Derive(bookings, users, e.identity.Current(), e.now())
	stats := e.merge(derived)

	e.bus.Publish(bus.Event{
		Kind:      bus.KindRefreshed,
		Timestamp: time.Now(),
		Payload:   stats,
	})
	if stats.Added+stats.Updated+stats.Removed > 0 {
		e.logger.Info("conversations refreshed",
			zap.Int("added", stats.Added),
			zap.Int("updated", stats.Updated),
			zap.Int("removed", stats.Removed),
			zap.Int("total", stats.Total))
	}
}

// Snapshot returns a copy of the live collection in its current order
// (insertion order, survivors keep their position across refreshes).
func (e *Engine) Snapshot() []thread.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]thread.Conversation, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, cloneConversation(&e.live[id].conv))
	}
	return out
}

// Get returns a copy of one conversation by ID.
func (e *Engine) Get(id string) (thread.Conversation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.live[id]
	if !ok {
		return thread.Conversation{}, false
	}
	return cloneConversation(&ent.conv), true
}

// Append adds a composed message to a conversation and updates its
// denormalized last-message fields. The entry's derivation fingerprint is
// left untouched, so the appended message survives ticks until the
// underlying records actually change. Returns false for an unknown ID.
func (e *Engine) Append(conversationID string, msg thread.Message) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.live[conversationID]
	if !ok {
		return false
	}
	ent.conv.Messages = append(ent.conv.Messages, msg)
	ent.conv.LastMessage = msg.Body
	ent.conv.LastMessageAt = msg.SentAt
	return true
}

func cloneConversation(c *thread.Conversation) thread.Conversation {
	cp := *c
	cp.Messages = make([]thread.Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return cp
}

func drain(ch <-chan bus.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
