// Package middleware provides HTTP middleware for the insightful server:
// Prometheus request metrics and OpenTelemetry tracing. Both are standard
// func(http.Handler) http.Handler wrappers, composable with chi.
package middleware
