package server

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webheroes-dev/insightful/internal/content"
	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/middleware"
	"github.com/webheroes-dev/insightful/pkg/protocol"
	"github.com/webheroes-dev/insightful/pkg/reactive"
	"github.com/webheroes-dev/insightful/pkg/router"
	"github.com/webheroes-dev/insightful/pkg/urlstate"
)

// Widget element ids addressed by patches. The thin client resolves them
// to DOM nodes.
const (
	targetTabPanel    = "tab-panel"
	targetArticleList = "article-list"
)

// Session is one live connection: the server-side mirror of a client's
// address bar plus the URL-synchronized widget state built on it.
//
// All state hangs off a single reactive Owner. Every disconnect path
// funnels through Close, which releases every subscription exactly once.
type Session struct {
	ID string

	conn   *websocket.Conn
	config *Config
	logger *slog.Logger

	owner   *reactive.Owner
	history *browser.History
	router  *router.Router

	// ActiveTab mirrors the URL fragment; Filters mirrors the archive
	// table's query parameters.
	ActiveTab *urlstate.HashValue
	Filters   *urlstate.QueryValues

	store *content.Store

	send chan []byte
	done chan struct{}

	closed atomic.Bool
}

// NewSession builds a session whose history starts at initial, the address
// the client reported in its hello frame. conn may be nil for tests that
// drive ApplyEvent directly.
func NewSession(id string, conn *websocket.Conn, initial browser.Location, store *content.Store, config *Config, logger *slog.Logger) (*Session, error) {
	config = config.withDefaults()
	if logger == nil {
		logger = config.Logger
	}

	history := browser.NewHistory(initial)
	rt := router.New(history)
	owner := reactive.NewOwner(nil)

	s := &Session{
		ID:      id,
		conn:    conn,
		config:  config,
		logger:  logger.With("session", id),
		owner:   owner,
		history: history,
		router:  rt,
		store:   store,
		send:    make(chan []byte, config.SendBuffer),
		done:    make(chan struct{}),
	}

	activeTab, err := urlstate.NewHashValue(owner, history, rt, config.DefaultTab)
	if err != nil {
		owner.Dispose()
		return nil, err
	}
	s.ActiveTab = activeTab

	filters, err := urlstate.NewQueryValues(owner, history, rt, config.ManagedFilters, config.DefaultFilters)
	if err != nil {
		owner.Dispose()
		return nil, err
	}
	s.Filters = filters

	// Mirror every history change back to the client's address bar.
	// Client-originated changes get echoed too; the client applies nav
	// patches idempotently, so the echo is harmless.
	histSub := history.Subscribe(s.mirror)
	owner.OnCleanup(histSub.Release)

	// Widget effects: re-render whenever the synchronized state settles
	// on a new value.
	reactive.NewEffect(owner, s.renderTab)
	reactive.NewEffect(owner, s.renderArticleList)

	// Route table is installed; the navigation lifecycle is now safe to
	// attach to. Readiness flips exactly once per session.
	rt.SetReady(true)

	if lifecycleSub, err := rt.Subscribe(s.observeLifecycle); err == nil {
		owner.OnCleanup(lifecycleSub.Release)
	}

	// The gauge increments here and decrements in Close, so every built
	// session pairs the two no matter how it ends.
	middleware.RecordSessionCreate()

	return s, nil
}

// Router returns the session router, for navigation driven server-side.
func (s *Session) Router() *router.Router {
	return s.router
}

// History returns the session's history mirror.
func (s *Session) History() *browser.History {
	return s.history
}

// mirror turns a history change into a nav patch for the client.
func (s *Session) mirror(ev browser.Event) {
	middleware.RecordNavigationSignal("history")

	url := ev.Location.String()
	var patch protocol.Patch
	if ev.Type == browser.EventPushState {
		patch = protocol.NewNavPushPatch(url)
	} else {
		patch = protocol.NewNavReplacePatch(url)
	}
	s.queuePatches([]protocol.Patch{patch})
}

func (s *Session) observeLifecycle(ev router.Event) {
	if ev.Stage == router.StageWillStart {
		middleware.RecordNavigationSignal("router")
	}
}

// renderTab pushes the active tab to the client. Reading ActiveTab inside
// the effect subscribes it; equal re-derivations never reach this point.
func (s *Session) renderTab() reactive.Cleanup {
	tab := s.ActiveTab.Value()
	s.queuePatches([]protocol.Patch{
		{Op: protocol.PatchSetText, Target: targetTabPanel, Value: tab},
		{Op: protocol.PatchSetAttr, Target: "data-active-tab", Value: tab},
	})
	return nil
}

// renderArticleList pushes the filtered archive listing.
func (s *Session) renderArticleList() reactive.Cleanup {
	filters := s.Filters.Value()
	articles := s.store.List(filters)

	titles := make([]string, len(articles))
	for i, a := range articles {
		titles[i] = a.Title
	}
	s.queuePatches([]protocol.Patch{
		{Op: protocol.PatchSetText, Target: targetArticleList, Value: strings.Join(titles, "\n")},
		{Op: protocol.PatchSetAttr, Target: "data-article-count", Value: fmt.Sprintf("%d", len(articles))},
	})
	return nil
}

// ApplyEvent applies one client navigation event to the session mirror.
// The urlstate machinery reacts through its own subscriptions; this method
// only moves the history.
func (s *Session) ApplyEvent(ev protocol.Event) error {
	if s.closed.Load() {
		return nil
	}

	switch ev.Type {
	case protocol.EventHashChange:
		s.history.SetFragment(ev.Fragment)
		return nil

	case protocol.EventPopState:
		loc := browser.Location{Path: ev.Path, RawQuery: ev.Query, Fragment: ev.Fragment}
		if loc.Path == "" {
			loc.Path = "/"
		}
		s.history.Restore(loc)
		return nil

	case protocol.EventNavigate:
		ref := ev.Path
		if ev.Query != "" {
			ref += "?" + ev.Query
		}
		return s.router.Navigate(ref)

	default:
		return fmt.Errorf("server: unknown event type 0x%02x", uint8(ev.Type))
	}
}

// queuePatches encodes patches into a frame and queues it for sending.
// The queue never blocks the navigation path; overflow drops the frame
// and counts an error, and the client resyncs from its address bar.
func (s *Session) queuePatches(patches []protocol.Patch) {
	if s.closed.Load() || len(patches) == 0 {
		return
	}

	frame, err := protocol.EncodeFrame(protocol.FramePatches, 0, protocol.EncodePatches(patches))
	if err != nil {
		s.logger.Error("patch frame encode failed", "error", err)
		return
	}

	select {
	case s.send <- frame:
		middleware.RecordPatches(len(patches))
	default:
		s.logger.Warn("send buffer full, dropping patches", "count", len(patches))
		middleware.RecordWebSocketError("send_buffer_full")
	}
}

// ReadLoop reads frames until the connection closes. Blocks; run on its
// own goroutine. Always ends in Close.
func (s *Session) ReadLoop() {
	defer s.Close()

	// Pongs elicited by WritePump's pings extend the deadline, so an idle
	// but responsive client is never timed out.
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				middleware.RecordWebSocketError("read")
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			middleware.RecordWebSocketError("decode")
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.logger.Error("event decode error", "error", err)
				middleware.RecordWebSocketError("decode")
				continue
			}
			if err := s.ApplyEvent(ev); err != nil {
				s.logger.Error("event apply error", "type", ev.Type.String(), "error", err)
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type.String())
		}
	}
}

// WritePump sends queued frames and keepalive pings until Close. Blocks;
// run on its own goroutine.
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.logger.Error("write error", "error", err)
				middleware.RecordWebSocketError("write")
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// Close tears the session down: disposes the owner (releasing every
// urlstate subscription), stops the pumps and closes the socket.
// Idempotent; every disconnect path ends here.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}

	s.owner.Dispose()
	close(s.done)
	if s.conn != nil {
		s.conn.Close()
	}

	middleware.RecordSessionDestroy()
	s.logger.Info("session closed")
}
