// Package router implements the client-side routing collaborator for the
// URL synchronization machinery. To that machinery the router is a black
// box with three capabilities: a readiness flag, a navigation lifecycle
// event source, and a shallow "replace current URL" operation that changes
// the address and history without re-running page loaders.
package router

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/webheroes-dev/insightful/pkg/browser"
)

// ErrNotReady is returned by Subscribe while the navigation lifecycle is
// not yet safe to attach to. Callers degrade to the raw history source and
// retry when readiness flips; this is not a fatal condition.
var ErrNotReady = errors.New("router: navigation lifecycle not ready")

// Stage identifies where in a route transition a lifecycle event fires.
type Stage uint8

const (
	// StageWillStart fires before the transition touches the history.
	StageWillStart Stage = iota + 1

	// StageDidStart fires once the history reflects the new location.
	StageDidStart
)

// String returns a human-readable name for the stage.
func (s Stage) String() string {
	switch s {
	case StageWillStart:
		return "navigationWillStart"
	case StageDidStart:
		return "navigationDidStart"
	default:
		return "unknown"
	}
}

// Event is a navigation lifecycle notification.
type Event struct {
	Stage Stage
	From  browser.Location
	To    browser.Location

	// Shallow marks transitions that change the address without
	// re-running page loaders.
	Shallow bool
}

// Subscription is an active lifecycle or readiness registration. Owned by
// the subscriber that created it; Release is idempotent.
type Subscription struct {
	release  func()
	released atomic.Bool
}

// Release detaches the subscription. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil || s.released.Swap(true) {
		return
	}
	s.release()
}

// Router drives route transitions for one session. It is constructed not
// ready: lifecycle subscriptions are refused until SetReady(true), which
// the session calls once the route table is installed on the client.
type Router struct {
	history *browser.History

	ready atomic.Bool

	mu        sync.RWMutex
	navSubs   map[uint64]func(Event)
	readySubs map[uint64]func(bool)
	nextSubID uint64
}

// New creates a router over the given session history. The router starts
// not ready.
func New(h *browser.History) *Router {
	return &Router{
		history:   h,
		navSubs:   make(map[uint64]func(Event)),
		readySubs: make(map[uint64]func(bool)),
	}
}

// History returns the session history this router navigates.
func (r *Router) History() *browser.History {
	return r.history
}

// Ready reports whether the navigation lifecycle can be subscribed to.
func (r *Router) Ready() bool {
	return r.ready.Load()
}

// SetReady flips the readiness flag and notifies readiness subscribers.
// Setting the current value again is a no-op.
func (r *Router) SetReady(ready bool) {
	if r.ready.Swap(ready) == ready {
		return
	}

	r.mu.RLock()
	fns := make([]func(bool), 0, len(r.readySubs))
	for _, fn := range r.readySubs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(ready)
	}
}

// OnReadyChange registers fn to run whenever readiness flips. Unlike
// Subscribe, readiness registration is always allowed: it is how listeners
// learn that the lifecycle became attachable.
func (r *Router) OnReadyChange(fn func(ready bool)) *Subscription {
	r.mu.Lock()
	r.nextSubID++
	id := r.nextSubID
	r.readySubs[id] = fn
	r.mu.Unlock()

	return &Subscription{release: func() {
		r.mu.Lock()
		delete(r.readySubs, id)
		r.mu.Unlock()
	}}
}

// Subscribe registers fn for navigation lifecycle events. Returns
// ErrNotReady while the router is not ready.
func (r *Router) Subscribe(fn func(Event)) (*Subscription, error) {
	if !r.ready.Load() {
		return nil, ErrNotReady
	}

	r.mu.Lock()
	r.nextSubID++
	id := r.nextSubID
	r.navSubs[id] = fn
	r.mu.Unlock()

	return &Subscription{release: func() {
		r.mu.Lock()
		delete(r.navSubs, id)
		r.mu.Unlock()
	}}, nil
}

// SubscriberCount reports live lifecycle subscriptions. Test probe for the
// zero-leak teardown invariant.
func (r *Router) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.navSubs)
}

// Navigate performs a full route transition to path: canonicalize, fire
// navigationWillStart, push the history entry, fire navigationDidStart.
// If canonicalization changed the path the entry is replaced instead of
// pushed, avoiding a duplicate history entry for the same page.
func (r *Router) Navigate(path string) error {
	canonPath, query, changed, err := CanonicalizePath(path)
	if err != nil {
		return err
	}

	from := r.history.Current()
	to := browser.Location{Path: canonPath, RawQuery: query}

	r.emit(Event{Stage: StageWillStart, From: from, To: to})
	if changed {
		r.history.Replace(to)
	} else {
		r.history.Push(to)
	}
	r.emit(Event{Stage: StageDidStart, From: from, To: to})
	return nil
}

// Replace performs a shallow transition: the current history entry is
// swapped for loc without re-running page loaders. This is the write path
// for URL-synchronized state.
func (r *Router) Replace(loc browser.Location) error {
	canonPath, _, _, err := CanonicalizePath(loc.Path)
	if err != nil {
		return err
	}
	loc.Path = canonPath

	from := r.history.Current()

	r.emit(Event{Stage: StageWillStart, From: from, To: loc, Shallow: true})
	r.history.Replace(loc)
	r.emit(Event{Stage: StageDidStart, From: from, To: loc, Shallow: true})
	return nil
}

// Push performs a shallow transition that adds a history entry, for state
// changes the user should be able to step back through.
func (r *Router) Push(loc browser.Location) error {
	canonPath, _, _, err := CanonicalizePath(loc.Path)
	if err != nil {
		return err
	}
	loc.Path = canonPath

	from := r.history.Current()

	r.emit(Event{Stage: StageWillStart, From: from, To: loc, Shallow: true})
	r.history.Push(loc)
	r.emit(Event{Stage: StageDidStart, From: from, To: loc, Shallow: true})
	return nil
}

// emit delivers ev to lifecycle subscribers. Events fire only while the
// router is ready; before that the raw history source carries the signal.
func (r *Router) emit(ev Event) {
	if !r.ready.Load() {
		return
	}

	r.mu.RLock()
	fns := make([]func(Event), 0, len(r.navSubs))
	for _, fn := range r.navSubs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
