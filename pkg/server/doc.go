// Package server is the live session server for the insightful site.
//
// Each WebSocket connection gets a Session holding an in-process mirror of
// the client's address bar (a browser.History plus a router.Router) and
// the URL-synchronized widget state built on it: the active article tab in
// the fragment and the archive table filters in the query string. The
// thin client forwards raw navigation events; the session applies them to
// its history, the urlstate machinery re-derives widget state, and the
// resulting patches flow back over the socket.
package server
