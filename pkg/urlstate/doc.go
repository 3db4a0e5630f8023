// Package urlstate keeps a piece of interactive page state mirrored into
// the page address, so the state survives reloads, is shareable as a link,
// and stays consistent across back/forward traversal and client-side route
// transitions.
//
// Two instances of the same pattern are provided:
//
//   - HashValue: a single selected identifier (the active tab) stored in
//     the URL fragment.
//   - QueryValues: a set of key/value pairs (table filters) stored in the
//     query string.
//
// Both are assembled from three collaborating pieces. The reader derives
// the current value from the address, purely and idempotently. The
// listener unifies two independent change sources, raw history events and
// the router's navigation lifecycle, into one ordered stream of
// NavigationSignals. The synchronizer holds the in-memory value, re-derives
// it on every signal, and writes new values back through the router's
// shallow replace.
//
// The URL is the single source of truth: a write updates the address and
// waits for the resulting NavigationSignal to refresh memory, rather than
// keeping two independently mutable copies. Duplicate signals for one
// navigation are expected and harmless, because derivation is idempotent
// and the underlying signal drops writes that compare equal.
package urlstate
