package urlstate

import (
	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/router"
)

// Origin tags which source produced a NavigationSignal. Signals from both
// origins flow through one dispatcher; the tag exists for observability,
// not for divergent handling.
type Origin uint8

const (
	// OriginHistory marks signals from raw history/fragment events.
	OriginHistory Origin = iota + 1

	// OriginRouter marks signals from the router navigation lifecycle.
	OriginRouter
)

// String returns a human-readable name for the origin.
func (o Origin) String() string {
	switch o {
	case OriginHistory:
		return "history"
	case OriginRouter:
		return "router"
	default:
		return "unknown"
	}
}

// NavigationSignal means "the URL may have changed; re-derive now". It
// carries the location as of the moment the signal fired and has no
// identity of its own; it is a transient event, not a stored entity.
// One logical navigation may produce several signals; consumers must not
// assume exactly one.
type NavigationSignal struct {
	Origin   Origin
	Location browser.Location
}

// Subscription is an active registration with one event source. It is
// owned exclusively by the listener that created it and must be released
// exactly once on teardown, regardless of how teardown is triggered.
type Subscription interface {
	Release()
}

// Source delivers NavigationSignals to a handler. Subscribe returns an
// error when the source cannot be attached yet; for the router lifecycle
// that is router.ErrNotReady, which callers treat as degradation rather
// than failure.
type Source interface {
	Subscribe(fn func(NavigationSignal)) (Subscription, error)
}

// Lifecycle is a Source gated behind a readiness flag, matching the router
// collaborator: subscription attempts fail until Ready reports true, and
// OnReadyChange announces every flip so listeners can re-evaluate their
// attachment.
type Lifecycle interface {
	Source
	Ready() bool
	OnReadyChange(fn func(ready bool)) Subscription
}

// HistorySource adapts a session History into a Source. History events are
// always available; this is the low-level source that every listener
// attaches on initialization.
func HistorySource(h *browser.History) Source {
	return historySource{h: h}
}

type historySource struct {
	h *browser.History
}

func (s historySource) Subscribe(fn func(NavigationSignal)) (Subscription, error) {
	sub := s.h.Subscribe(func(ev browser.Event) {
		fn(NavigationSignal{Origin: OriginHistory, Location: ev.Location})
	})
	return sub, nil
}

// RouterLifecycle adapts a Router into a Lifecycle. Signals are emitted
// for the navigationWillStart stage, carrying the target location: the
// lifecycle fires before the transition lands, and carrying the target
// keeps derivation consistent with the address the navigation is about to
// install.
func RouterLifecycle(r *router.Router) Lifecycle {
	return routerLifecycle{r: r}
}

type routerLifecycle struct {
	r *router.Router
}

func (l routerLifecycle) Subscribe(fn func(NavigationSignal)) (Subscription, error) {
	sub, err := l.r.Subscribe(func(ev router.Event) {
		if ev.Stage != router.StageWillStart {
			return
		}
		fn(NavigationSignal{Origin: OriginRouter, Location: ev.To})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (l routerLifecycle) Ready() bool {
	return l.r.Ready()
}

func (l routerLifecycle) OnReadyChange(fn func(bool)) Subscription {
	return l.r.OnReadyChange(fn)
}
