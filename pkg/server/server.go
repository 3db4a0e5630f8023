package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webheroes-dev/insightful/internal/content"
	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/middleware"
	"github.com/webheroes-dev/insightful/pkg/protocol"
)

// Server serves the site pages and the /live WebSocket endpoint.
type Server struct {
	config   *Config
	logger   *slog.Logger
	store    *content.Store
	assets   *content.AssetStore
	sessions *SessionManager
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a server over the given content store.
func New(store *content.Store, config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		config:   config,
		logger:   config.Logger,
		store:    store,
		sessions: NewSessionManager(config.MaxSessions),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	r := chi.NewRouter()

	// The WebSocket upgrade hijacks the connection and needs the raw
	// ResponseWriter, so /live mounts ahead of the instrumented chain.
	// Session traffic has its own metrics.
	r.Get("/live", s.handleLive)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Prometheus())
		r.Use(middleware.OpenTelemetry())

		r.Get("/healthz", s.handleHealth)
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/", s.handleIndex)
		r.Get("/posts/{slug}", s.handleArticle)
		r.Get("/assets/*", s.handleAsset)
		r.Get("/static/live.js", s.handleStatic)
	})

	s.httpSrv = &http.Server{
		Addr:    config.Address,
		Handler: r,
	}
	return s
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// SetAssets enables serving article assets from the given store.
func (s *Server) SetAssets(assets *content.AssetStore) {
	s.assets = assets
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", "address", s.config.Address)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, closes all sessions and drains
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.CloseAll()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","sessions":%d,"articles":%d}`, s.sessions.Count(), s.store.Count())
}

// handleLive upgrades the connection and runs the session. The first frame
// must be a hello carrying the client's starting address.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		middleware.RecordWebSocketError("upgrade")
		return
	}

	initial, err := s.readHello(conn)
	if err != nil {
		s.logger.Error("hello failed", "error", err)
		middleware.RecordWebSocketError("hello")
		conn.Close()
		return
	}

	id, err := GenerateSessionID()
	if err != nil {
		conn.Close()
		return
	}

	sess, err := NewSession(id, conn, initial, s.store, s.config, s.logger)
	if err != nil {
		s.logger.Error("session setup failed", "error", err)
		conn.Close()
		return
	}

	if err := s.sessions.Add(sess); err != nil {
		s.logger.Warn("session rejected", "error", err)
		sess.Close()
		return
	}
	s.logger.Info("session opened", "session", id, "path", initial.Path)

	go sess.WritePump()
	sess.ReadLoop()

	s.sessions.Remove(id)
}

// readHello reads and decodes the mandatory first frame.
func (s *Server) readHello(conn *websocket.Conn) (browser.Location, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return browser.Location{}, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return browser.Location{}, err
	}
	if frame.Type != protocol.FrameHello {
		return browser.Location{}, fmt.Errorf("server: expected hello frame, got %s", frame.Type)
	}
	hello, err := protocol.DecodeHello(frame.Payload)
	if err != nil {
		return browser.Location{}, err
	}

	loc := browser.Location{Path: hello.Path, RawQuery: hello.Query, Fragment: hello.Fragment}
	if loc.Path == "" {
		loc.Path = "/"
	}
	return loc, nil
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>insightful</title></head>
<body>
<h1>insightful</h1>
<div id="article-list">
{{range .Articles}}<p><a href="/posts/{{.Slug}}">{{.Title}}</a></p>
{{end}}</div>
<script src="/static/live.js"></script>
</body>
</html>
`))

var articleTmpl = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<nav id="tabs">
<a href="#summary">Summary</a>
<a href="#details">Details</a>
<a href="#comments">Comments</a>
</nav>
<div id="tab-panel"></div>
<article>{{.Body}}</article>
<script src="/static/live.js"></script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	articles := s.store.List(s.config.DefaultFilters)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, map[string]any{"Articles": articles}); err != nil {
		s.logger.Error("index render failed", "error", err)
	}
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.NotFound(w, r)
		return
	}
	key := chi.URLParam(r, "*")
	body, contentType, err := s.assets.Get(r.Context(), key)
	if err != nil {
		s.logger.Warn("asset fetch failed", "key", key, "error", err)
		http.NotFound(w, r)
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	io.Copy(w, body)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, ok := s.store.Get(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := articleTmpl.Execute(w, article); err != nil {
		s.logger.Error("article render failed", "error", err)
	}
}
