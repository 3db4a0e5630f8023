package browser

import (
	"sync"
	"sync/atomic"
)

// EventType identifies the kind of low-level navigation event.
type EventType uint8

const (
	// EventHashChange fires when the fragment changes on the current entry.
	EventHashChange EventType = iota + 1

	// EventPopState fires when the current entry changes by traversal
	// (back/forward) or an externally restored location.
	EventPopState

	// EventPushState fires when a new entry is pushed.
	EventPushState

	// EventReplaceState fires when the current entry is replaced in place.
	EventReplaceState
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventHashChange:
		return "hashchange"
	case EventPopState:
		return "popstate"
	case EventPushState:
		return "pushstate"
	case EventReplaceState:
		return "replacestate"
	default:
		return "unknown"
	}
}

// Event is a low-level history notification carrying the location as of
// the moment the event fired.
type Event struct {
	Type     EventType
	Location Location
}

// Subscription is an active registration with a History. It is owned by
// the subscriber that created it and must be released exactly once;
// releasing twice is a safe no-op.
type Subscription struct {
	h        *History
	id       uint64
	released atomic.Bool
}

// Release detaches the subscription. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil || s.released.Swap(true) {
		return
	}
	s.h.unsubscribe(s.id)
}

// DefaultMaxEntries bounds the history stack. Oldest entries fall off,
// matching the sliding-window behavior of a browser session.
const DefaultMaxEntries = 100

// History models the browser history for one session: a bounded stack of
// locations with a cursor, emitting hashchange/popstate style events to
// subscribers. It is the always-available low-level navigation source.
//
// A single traversal may emit more than one event (popstate plus
// hashchange when the fragment differs). Subscribers must treat events as
// "the URL may have changed" and re-derive idempotently, never as
// exactly-once notifications.
type History struct {
	mu      sync.RWMutex
	entries []Location
	cur     int
	max     int

	subs      map[uint64]func(Event)
	nextSubID uint64

	// delivered counts every event handed to a subscriber. Test probe.
	delivered atomic.Uint64
}

// NewHistory creates a history with the given initial location as its only
// entry.
func NewHistory(initial Location) *History {
	return &History{
		entries: []Location{initial},
		max:     DefaultMaxEntries,
		subs:    make(map[uint64]func(Event)),
	}
}

// Current returns the location of the active entry.
func (h *History) Current() Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.cur]
}

// Length returns the number of entries.
func (h *History) Length() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Subscribe registers fn for history events. Events are delivered
// synchronously, in the order the history applies them.
func (h *History) Subscribe(fn func(Event)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSubID++
	id := h.nextSubID
	h.subs[id] = fn
	return &Subscription{h: h, id: id}
}

func (h *History) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// SubscriberCount reports live subscriptions. Test probe for the zero-leak
// teardown invariant.
func (h *History) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// EventCount reports the total number of events delivered to subscribers.
func (h *History) EventCount() uint64 {
	return h.delivered.Load()
}

// Push appends a new entry and makes it current, discarding any forward
// entries, like history.pushState.
func (h *History) Push(loc Location) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.cur+1], loc)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
	h.cur = len(h.entries) - 1
	h.mu.Unlock()

	h.emit(Event{Type: EventPushState, Location: loc})
}

// Replace swaps the current entry in place, like history.replaceState.
// History length and position are unchanged.
func (h *History) Replace(loc Location) {
	h.mu.Lock()
	h.entries[h.cur] = loc
	h.mu.Unlock()

	h.emit(Event{Type: EventReplaceState, Location: loc})
}

// SetFragment assigns the fragment like setting location.hash: a new entry
// is pushed and a hashchange event fires. Assigning the identical fragment
// is a no-op, as in browsers.
func (h *History) SetFragment(fragment string) {
	h.mu.Lock()
	prev := h.entries[h.cur]
	if prev.Fragment == fragment {
		h.mu.Unlock()
		return
	}
	next := prev.WithFragment(fragment)
	h.entries = append(h.entries[:h.cur+1], next)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
	h.cur = len(h.entries) - 1
	h.mu.Unlock()

	h.emit(Event{Type: EventHashChange, Location: next})
}

// Restore makes loc the current entry, emulating an externally driven
// traversal: the client went back or forward and reported the restored
// location. If loc matches an existing entry the cursor moves there;
// otherwise the current entry is replaced. A popstate event fires either
// way, plus a hashchange when the fragment changed.
func (h *History) Restore(loc Location) {
	h.mu.Lock()
	prev := h.entries[h.cur]
	found := false
	// Prefer the entry nearest to the cursor, scanning outward.
	for dist := 1; dist < len(h.entries) && !found; dist++ {
		for _, idx := range []int{h.cur - dist, h.cur + dist} {
			if idx >= 0 && idx < len(h.entries) && h.entries[idx].Equal(loc) {
				h.cur = idx
				found = true
				break
			}
		}
	}
	if !found {
		h.entries[h.cur] = loc
	}
	h.mu.Unlock()

	h.emit(Event{Type: EventPopState, Location: loc})
	if prev.Fragment != loc.Fragment {
		h.emit(Event{Type: EventHashChange, Location: loc})
	}
}

// Back moves to the previous entry. Returns false at the oldest entry.
func (h *History) Back() bool {
	return h.travel(-1)
}

// Forward moves to the next entry. Returns false at the newest entry.
func (h *History) Forward() bool {
	return h.travel(+1)
}

func (h *History) travel(delta int) bool {
	h.mu.Lock()
	next := h.cur + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	prev := h.entries[h.cur]
	h.cur = next
	loc := h.entries[h.cur]
	h.mu.Unlock()

	// Traversal between same-document hash states fires both events in
	// browsers. Subscribers tolerate the duplicate by re-deriving.
	h.emit(Event{Type: EventPopState, Location: loc})
	if prev.Fragment != loc.Fragment {
		h.emit(Event{Type: EventHashChange, Location: loc})
	}
	return true
}

// emit delivers ev to every subscriber, synchronously.
func (h *History) emit(ev Event) {
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		h.delivered.Add(1)
		fn(ev)
	}
}
