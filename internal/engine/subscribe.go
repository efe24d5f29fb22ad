package engine

import (
	"sync"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// subscriberSet keeps per-collection subscribers in registration order. It
// has its own lock so notification never holds the engine lock, which lets
// subscribers perform engine reads safely.
type subscriberSet struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id int
	fn types.Subscriber
}

// Subscribe registers fn for change events on col and returns the matching
// unsubscribe function. Unsubscribing twice is harmless.
func (e *Engine) Subscribe(col string, fn types.Subscriber) func() {
	e.subs.mu.Lock()
	defer e.subs.mu.Unlock()

	if e.subs.subs == nil {
		e.subs.subs = make(map[string][]subscription)
	}
	e.subs.nextID++
	id := e.subs.nextID
	e.subs.subs[col] = append(e.subs.subs[col], subscription{id: id, fn: fn})

	return func() {
		e.subs.mu.Lock()
		defer e.subs.mu.Unlock()

		list := e.subs.subs[col]
		for i, s := range list {
			if s.id == id {
				e.subs.subs[col] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// notify delivers ev to every subscriber of its collection, in registration
// order, on the calling goroutine. A panicking subscriber is recovered and
// logged; remaining subscribers still run.
func (e *Engine) notify(ev types.ChangeEvent) {
	e.subs.mu.RLock()
	list := make([]subscription, len(e.subs.subs[ev.Collection]))
	copy(list, e.subs.subs[ev.Collection])
	e.subs.mu.RUnlock()

	for _, s := range list {
		e.deliver(s, ev)
	}
}

func (e *Engine) deliver(s subscription, ev types.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			subscriberPanicsTotal.Inc()
			e.logger.Errorw("subscriber panicked",
				"collection", ev.Collection, "action", ev.Action, "panic", r)
		}
	}()
	s.fn(ev)
}
