package urlstate

import (
	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/reactive"
	"github.com/webheroes-dev/insightful/pkg/router"
)

// HashValue synchronizes a single selected identifier, typically the
// active tab id, with the URL fragment.
//
// The in-memory value is authoritative only as a cache of the URL: writes
// go to the address first (shallow, no page data reload) and memory is
// refreshed by the NavigationSignal the write produces. The initial value
// is read synchronously from the ambient location at mount.
type HashValue struct {
	state lifecycleState

	def string
	sig *reactive.Signal[string]

	history  *browser.History
	router   *router.Router
	listener *NavListener
}

// NewHashValue mounts a fragment-synchronized value with the given
// default. The router may be nil; writes then fall back to assigning the
// fragment directly on the history, and navigation is observed through
// the raw source alone.
//
// Teardown is registered on owner, so every unmount path, including
// unmounting while the router never became ready, releases the listener's
// subscriptions exactly once.
func NewHashValue(owner *reactive.Owner, h *browser.History, rt *router.Router, def string) (*HashValue, error) {
	hv := &HashValue{
		def:     def,
		history: h,
		router:  rt,
	}

	// Initial read is synchronous against the ambient location.
	hv.sig = reactive.NewSignal(ReadFragment(h.Current(), def))

	var lc Lifecycle
	if rt != nil {
		lc = RouterLifecycle(rt)
	}
	listener, err := NewListener(HistorySource(h), lc, hv.derive)
	if err != nil {
		return nil, err
	}
	hv.listener = listener
	hv.state.activate()

	if owner != nil {
		owner.OnCleanup(hv.Teardown)
	}
	return hv, nil
}

// derive refreshes memory from a NavigationSignal. Deriving twice from the
// same location is free: the signal drops equal writes.
func (hv *HashValue) derive(sig NavigationSignal) {
	hv.sig.Set(ReadFragment(sig.Location, hv.def))
}

// Value returns the current identifier, subscribing the tracked listener
// if one is active.
func (hv *HashValue) Value() string {
	return hv.sig.Get()
}

// Peek returns the current identifier without subscribing.
func (hv *HashValue) Peek() string {
	return hv.sig.Peek()
}

// Set requests that the URL fragment encode v. The write is not applied
// optimistically; the resulting NavigationSignal refreshes memory, keeping
// the URL the single source of truth. After teardown, Set is a no-op.
func (hv *HashValue) Set(v string) {
	if !hv.state.active() {
		return
	}

	if hv.router != nil {
		loc := hv.history.Current().WithFragment(v)
		// Shallow replace: address and history change, loaders do not run.
		_ = hv.router.Replace(loc)
		return
	}
	hv.history.SetFragment(v)
}

// Bind returns the [currentValue, setValue] pair exposed to UI consumers.
func (hv *HashValue) Bind() (func() string, func(string)) {
	return hv.Value, hv.Set
}

// Teardown releases the listener's subscriptions. Idempotent; after it
// returns, signals and writes are ignored.
func (hv *HashValue) Teardown() {
	if !hv.state.teardown() {
		return
	}
	hv.listener.Close()
}

// LiveSubscriptions reports the listener's live subscription count.
// Test probe for the zero-leak invariant.
func (hv *HashValue) LiveSubscriptions() int {
	return hv.listener.LiveSubscriptions()
}
