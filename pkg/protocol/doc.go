// Package protocol defines the binary wire format between the thin client
// and the session server.
//
// Traffic is navigation-shaped in both directions. The client forwards
// low-level browser events (hashchange, popstate, link navigation); the
// server answers with patches that update the client's address bar and
// rendered widgets. Frames are length-delimited with a fixed header;
// variable-size fields use unsigned varints.
package protocol
