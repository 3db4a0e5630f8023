package urlstate

import (
	"errors"
	"sync"
)

// NavListener unifies the raw history source and the router navigation
// lifecycle into a single ordered stream of NavigationSignals, delivered
// to one dispatch function.
//
// The raw source attaches on construction and stays attached until Close.
// The lifecycle source attaches lazily: whenever the router's readiness
// flips true the listener attaches, and whenever it flips false (or the
// listener closes) it detaches. A failed lifecycle attach is degradation,
// not an error; the raw source alone still carries every navigation.
//
// No cross-source ordering is guaranteed and one navigation may arrive
// from both sources; the dispatch target must re-derive idempotently.
type NavListener struct {
	mu sync.Mutex

	dispatch func(NavigationSignal)

	rawSub       Subscription
	lifecycle    Lifecycle
	lifecycleSub Subscription
	readySub     Subscription

	closed bool
}

// NewListener attaches to raw immediately and, when lc is non-nil, tracks
// its readiness to attach the lifecycle source as soon as it is safe.
func NewListener(raw Source, lc Lifecycle, dispatch func(NavigationSignal)) (*NavListener, error) {
	if raw == nil {
		return nil, errors.New("urlstate: raw source is required")
	}
	if dispatch == nil {
		return nil, errors.New("urlstate: dispatch is required")
	}

	l := &NavListener{
		dispatch:  dispatch,
		lifecycle: lc,
	}

	rawSub, err := raw.Subscribe(l.forward)
	if err != nil {
		return nil, err
	}
	l.rawSub = rawSub

	if lc != nil {
		l.readySub = lc.OnReadyChange(func(ready bool) {
			l.evaluateLifecycle(ready)
		})
		l.evaluateLifecycle(lc.Ready())
	}

	return l, nil
}

// forward is the single dispatcher both sources feed. Signals arriving
// after Close are ignored; torn-down listeners never observe navigation.
func (l *NavListener) forward(sig NavigationSignal) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	l.dispatch(sig)
}

// evaluateLifecycle reconciles the lifecycle subscription with the current
// readiness. Attach failures leave the listener on the raw source only; a
// later readiness flip retries.
func (l *NavListener) evaluateLifecycle(ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	if !ready {
		if l.lifecycleSub != nil {
			l.lifecycleSub.Release()
			l.lifecycleSub = nil
		}
		return
	}

	if l.lifecycleSub != nil {
		return
	}
	sub, err := l.lifecycle.Subscribe(l.forward)
	if err != nil {
		// Router raced back to not-ready; the readiness callback will
		// re-attach when it flips again.
		return
	}
	l.lifecycleSub = sub
}

// Close releases every subscription exactly once. Safe to call more than
// once and safe to call while the lifecycle source was never attached;
// closing mid-flight must not leave a dangling subscription or panic.
func (l *NavListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true

	if l.rawSub != nil {
		l.rawSub.Release()
		l.rawSub = nil
	}
	if l.lifecycleSub != nil {
		l.lifecycleSub.Release()
		l.lifecycleSub = nil
	}
	if l.readySub != nil {
		l.readySub.Release()
		l.readySub = nil
	}
}

// LiveSubscriptions reports how many subscriptions the listener currently
// holds. Test probe.
func (l *NavListener) LiveSubscriptions() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, sub := range []Subscription{l.rawSub, l.lifecycleSub, l.readySub} {
		if sub != nil {
			n++
		}
	}
	return n
}
