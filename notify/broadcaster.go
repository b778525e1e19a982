// Package notify fans rate change events out to registered subscribers.
// Delivery is synchronous and in registration order; subscribers filter for
// themselves.
package notify

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/google/uuid"

	rates "go-currency-rate-registry"
)

// Handler receives rate change events.
type Handler interface {
	HandleRateChange(ev rates.RateChange)
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(ev rates.RateChange)

// HandleRateChange invokes f.
func (f HandlerFunc) HandleRateChange(ev rates.RateChange) { f(ev) }

// Subscription identifies one registration with a Broadcaster. Registering
// the same Handler twice yields two distinct subscriptions.
type Subscription struct {
	id uuid.UUID
}

// ID returns the subscription's unique id.
func (s Subscription) ID() uuid.UUID { return s.id }

// Broadcaster maintains the ordered subscriber sequence. It is safe for
// concurrent use; broadcast itself runs on the caller's goroutine.
type Broadcaster struct {
	// lock synchronizes access to entries to make it concurrency safe
	lock sync.RWMutex

	// entries the subscribers, in registration order
	entries []entry

	// logger for logging
	logger log.Logger
}

type entry struct {
	id      uuid.UUID
	handler Handler
}

// New constructs an empty Broadcaster.
func New(logger log.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
	}
}

// Register appends h to the subscriber sequence and returns a handle for
// later removal. Duplicates are allowed; each call gets its own handle.
func (b *Broadcaster) Register(h Handler) Subscription {
	id := uuid.New()
	b.lock.Lock()
	defer b.lock.Unlock()
	b.entries = append(b.entries, entry{id: id, handler: h})
	return Subscription{id: id}
}

// Unregister removes the entry registered under sub. Unknown handles are a
// no-op.
func (b *Broadcaster) Unregister(sub Subscription) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for i, e := range b.entries {
		if e.id == sub.id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Broadcast delivers ev to every subscriber in registration order, without
// filtering. It returns only after the last handler has run.
func (b *Broadcaster) Broadcast(ev rates.RateChange) {
	b.lock.RLock()
	handlers := make([]Handler, len(b.entries))
	for i, e := range b.entries {
		handlers[i] = e.handler
	}
	b.lock.RUnlock()

	b.logger.Log("msg", "broadcasting rate change", "code", ev.Code, "rate", ev.Rate, "subscribers", len(handlers))

	for _, h := range handlers {
		h.HandleRateChange(ev)
	}
}

// Len reports the number of current subscriptions.
func (b *Broadcaster) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.entries)
}
