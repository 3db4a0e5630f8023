package reactive

// Listener is anything that can be notified when a dependency changes.
// Effects implement it; tests implement it to probe notification counts.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier for this listener, used to
	// deduplicate subscriptions.
	ID() uint64
}

// Cleanup is returned by an effect body to release resources.
// It runs before the effect re-runs and when the effect is disposed.
type Cleanup func()
