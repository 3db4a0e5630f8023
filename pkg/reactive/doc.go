// Package reactive provides the fine-grained reactive core for insightful.
//
// Signal[T] is a reactive value container. Reading a signal inside a tracked
// context (an effect, or an explicit WithListener block) subscribes the
// current listener, which is notified when the value changes:
//
//	tab := reactive.NewSignal("summary")
//	value := tab.Get() // read (subscribes current listener)
//	tab.Set("details") // write (notifies subscribers)
//
// Owner provides scoped resource lifetimes. Effects and cleanup functions
// registered under an Owner are released, in reverse order, when the Owner
// is disposed. Disposal is idempotent and runs on every exit path, which is
// what guarantees no leaked subscriptions when a page element unmounts:
//
//	owner := reactive.NewOwner(nil)
//	owner.OnCleanup(func() { sub.Release() })
//	defer owner.Dispose()
package reactive
