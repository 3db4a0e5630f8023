package server

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures the live session server.
type Config struct {
	// Address is the listen address (default ":8080").
	Address string

	// ReadTimeout is the WebSocket read deadline.
	ReadTimeout time.Duration

	// WriteTimeout is the WebSocket write deadline.
	WriteTimeout time.Duration

	// PingInterval is how often keepalive pings are sent. Must be
	// shorter than ReadTimeout on the client side.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// SendBuffer is the per-session outbound frame queue length. A full
	// queue drops frames rather than blocking the event path.
	SendBuffer int

	// MaxSessions caps concurrent sessions (0 = unlimited).
	MaxSessions int

	// DefaultTab is the tab shown when the fragment is absent.
	DefaultTab string

	// ManagedFilters are the query keys the archive table synchronizes.
	ManagedFilters []string

	// DefaultFilters provide values for managed keys absent from the
	// query string.
	DefaultFilters map[string]string

	// CheckOrigin validates the WebSocket upgrade origin.
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		SendBuffer:      64,
		DefaultTab:      "summary",
		ManagedFilters:  []string{"status", "tag"},
		DefaultFilters:  map[string]string{"status": "published"},
		CheckOrigin: func(r *http.Request) bool {
			// Same-origin policy is enforced by the reverse proxy in
			// production; local development connects from localhost.
			return true
		},
		Logger: slog.Default(),
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.DefaultTab == "" {
		c.DefaultTab = d.DefaultTab
	}
	if c.ManagedFilters == nil {
		c.ManagedFilters = d.ManagedFilters
	}
	if c.DefaultFilters == nil {
		c.DefaultFilters = d.DefaultFilters
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}
