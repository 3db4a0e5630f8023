package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a single goroutine.
// Each goroutine gets its own context so signal reads on concurrent
// sessions never observe another session's listener.
type trackingContext struct {
	// currentListener is what is currently tracking dependencies.
	// nil means reads do not create subscriptions.
	currentListener Listener

	// currentOwner owns newly created effects.
	currentOwner *Owner
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map // map[uint64]*trackingContext

// goroutineID extracts the current goroutine id from the runtime stack
// header ("goroutine <id> ..."). Implementation detail, never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTrackingContext() *trackingContext {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentListener returns the listener tracking dependencies on this
// goroutine, or nil when no tracking is active.
func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

// getCurrentOwner returns the Owner for new effects on this goroutine.
func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// WithListener runs fn with l as the current listener. Signal reads inside
// fn subscribe l. Used by effects internally and by tests as a probe.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// WithOwner runs fn with o as the current owner. Effects created inside fn
// are registered on o and disposed with it.
func WithOwner(o *Owner, fn func()) {
	old := setCurrentOwner(o)
	defer setCurrentOwner(old)
	fn()
}
