// Package browser models the ambient browser environment for one session:
// the address bar (Location) and the session history (History).
//
// The server-driven design keeps an authoritative in-process mirror of the
// client's address bar. The thin client forwards hashchange/popstate
// events over the WebSocket; the session applies them to its History,
// which re-emits them to in-process subscribers exactly the way the
// browser would. The same History doubles as a deterministic test double
// for the URL synchronization machinery, including subscriber and event
// counting probes.
package browser
