package sync

import (
	"hash/fnv"
	"strconv"

	"github.com/matheus3301/carelink/internal/thread"
)

// RefreshStats is the payload of sync.refreshed events.
type RefreshStats struct {
	Added   int
	Updated int
	Removed int
	Total   int
}

// merge reconciles a derivation pass into the live collection in one
// atomic swap. Survivors keep their position; an entry whose fingerprint
// is unchanged is reused as-is, which both avoids churn from seed-message
// timestamp drift and preserves locally composed messages.
func (e *Engine) merge(derived []thread.Conversation) RefreshStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	byID := make(map[string]thread.Conversation, len(derived))
	derivedOrder := make([]string, 0, len(derived))
	for _, c := range derived {
		byID[c.ID] = c
		derivedOrder = append(derivedOrder, c.ID)
	}

	var stats RefreshStats
	next := make(map[string]*entry, len(derived))
	order := make([]string, 0, len(derived))

	for _, id := range e.order {
		c, ok := byID[id]
		if !ok {
			stats.Removed++
			continue
		}
		order = append(order, id)
		fp := fingerprint(&c)
		if old := e.live[id]; old.fp == fp {
			next[id] = old
		} else {
			next[id] = &entry{conv: c, fp: fp}
			stats.Updated++
		}
	}
	for _, id := range derivedOrder {
		if _, ok := next[id]; ok {
			continue
		}
		c := byID[id]
		next[id] = &entry{conv: c, fp: fingerprint(&c)}
		order = append(order, id)
		stats.Added++
	}

	e.order = order
	e.live = next
	stats.Total = len(order)
	return stats
}

// fingerprint hashes the meaningful fields of a derived conversation.
// Message timestamps and LastMessageAt are excluded: they drift forward
// with the clock on every pass without representing a real change.
func fingerprint(c *thread.Conversation) uint64 {
	h := fnv.New64a()
	ws := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	ws(c.ID)
	ws(c.PatientName)
	ws(c.PatientEmail)
	ws(c.LastMessage)
	ws(strconv.Itoa(c.UnreadCount))
	ws(string(c.Status))
	for _, m := range c.Messages {
		ws(m.ID)
		ws(m.SenderID)
		ws(m.SenderName)
		ws(m.Body)
		ws(string(m.Kind))
		ws(strconv.FormatBool(m.Read))
	}
	return h.Sum64()
}
