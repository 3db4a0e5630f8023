package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a side effect that re-runs when any signal it read during its
// last run changes. Dependencies are tracked automatically: reading a
// signal inside the effect body subscribes the effect.
//
// Re-runs are synchronous with the triggering write. The URL sync design
// is single-writer and event-driven, so there is no render phase to defer
// to; a navigation handler finishes with all dependent effects settled.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	running  atomic.Bool
	disposed atomic.Bool
}

// MarkDirty re-runs the effect. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	// A write performed inside the effect body must not recurse.
	if e.running.Load() {
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.running.Store(true)
	defer e.running.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	// Drop old sources; the body re-establishes its dependency set.
	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	oldListener := setCurrentListener(e)
	e.cleanup = e.fn()
	setCurrentListener(oldListener)
}

// addSource records a signal read during the effect body.
func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// NewEffect creates an effect owned by owner and runs it immediately.
// If owner is nil, the current goroutine's owner (see WithOwner) is used.
// The effect is disposed when its owner is disposed.
func NewEffect(owner *Owner, fn func() Cleanup) *Effect {
	if owner == nil {
		owner = getCurrentOwner()
	}

	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}

	if owner != nil {
		owner.registerEffect(e)
	}

	e.run()
	return e
}

// OnCleanup registers fn on the current goroutine's owner. It is the
// scoped-release primitive: unmount paths all funnel through the owner's
// Dispose, so fn runs exactly once regardless of how teardown triggers.
// Without an active owner this is a no-op.
func OnCleanup(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
