package urlstate

import (
	"testing"

	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/router"
)

func TestListenerRequiresRawSourceAndDispatch(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})

	if _, err := NewListener(nil, nil, func(NavigationSignal) {}); err == nil {
		t.Error("nil raw source should be rejected")
	}
	if _, err := NewListener(HistorySource(h), nil, nil); err == nil {
		t.Error("nil dispatch should be rejected")
	}
}

func TestListenerForwardsHistorySignals(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})

	var signals []NavigationSignal
	l, err := NewListener(HistorySource(h), nil, func(sig NavigationSignal) {
		signals = append(signals, sig)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	h.Push(browser.Location{Path: "/posts"})

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Origin != OriginHistory {
		t.Errorf("origin = %s, want history", signals[0].Origin)
	}
	if signals[0].Location.Path != "/posts" {
		t.Errorf("location path = %q, want %q", signals[0].Location.Path, "/posts")
	}
}

func TestListenerLifecycleAttachesOnReady(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	rt := router.New(h)

	var fromRouter int
	l, err := NewListener(HistorySource(h), RouterLifecycle(rt), func(sig NavigationSignal) {
		if sig.Origin == OriginRouter {
			fromRouter++
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	// Not ready yet: raw source only.
	if got := l.LiveSubscriptions(); got != 2 {
		t.Errorf("LiveSubscriptions() = %d before ready, want 2 (raw + readiness)", got)
	}
	if rt.SubscriberCount() != 0 {
		t.Errorf("lifecycle attached before ready")
	}

	rt.SetReady(true)

	if got := l.LiveSubscriptions(); got != 3 {
		t.Errorf("LiveSubscriptions() = %d after ready, want 3", got)
	}
	if rt.SubscriberCount() != 1 {
		t.Errorf("router SubscriberCount() = %d after ready, want 1", rt.SubscriberCount())
	}

	if err := rt.Navigate("/posts"); err != nil {
		t.Fatal(err)
	}
	if fromRouter != 1 {
		t.Errorf("router-origin signals = %d, want 1", fromRouter)
	}
}

func TestListenerLifecycleDetachesOnNotReady(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	rt := router.New(h)
	rt.SetReady(true)

	l, err := NewListener(HistorySource(h), RouterLifecycle(rt), func(NavigationSignal) {})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if rt.SubscriberCount() != 1 {
		t.Fatalf("lifecycle not attached while ready")
	}

	rt.SetReady(false)
	if rt.SubscriberCount() != 0 {
		t.Errorf("lifecycle still attached after readiness dropped")
	}

	// Readiness returning re-attaches.
	rt.SetReady(true)
	if rt.SubscriberCount() != 1 {
		t.Errorf("lifecycle did not re-attach on readiness return")
	}
}

func TestListenerCloseReleasesEverything(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	rt := router.New(h)
	rt.SetReady(true)

	dispatched := 0
	l, err := NewListener(HistorySource(h), RouterLifecycle(rt), func(NavigationSignal) {
		dispatched++
	})
	if err != nil {
		t.Fatal(err)
	}

	l.Close()
	l.Close()

	if got := l.LiveSubscriptions(); got != 0 {
		t.Errorf("LiveSubscriptions() = %d after Close, want 0", got)
	}
	if h.SubscriberCount() != 0 {
		t.Errorf("history subscription leaked")
	}
	if rt.SubscriberCount() != 0 {
		t.Errorf("lifecycle subscription leaked")
	}

	h.Push(browser.Location{Path: "/after"})
	if dispatched != 0 {
		t.Errorf("closed listener dispatched %d signals", dispatched)
	}
}

func TestListenerCloseBeforeReady(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	rt := router.New(h)

	l, err := NewListener(HistorySource(h), RouterLifecycle(rt), func(NavigationSignal) {})
	if err != nil {
		t.Fatal(err)
	}

	// Closing while the lifecycle was never attached must not panic or leak.
	l.Close()

	if got := l.LiveSubscriptions(); got != 0 {
		t.Errorf("LiveSubscriptions() = %d, want 0", got)
	}

	// A readiness flip after Close must not attach anything.
	rt.SetReady(true)
	if rt.SubscriberCount() != 0 {
		t.Errorf("closed listener attached to lifecycle, subscribers = %d", rt.SubscriberCount())
	}
}

func TestListenerDuplicateDelivery(t *testing.T) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	rt := router.New(h)
	rt.SetReady(true)

	var signals []NavigationSignal
	l, err := NewListener(HistorySource(h), RouterLifecycle(rt), func(sig NavigationSignal) {
		signals = append(signals, sig)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	// A router navigation reaches the listener through both sources: the
	// lifecycle event and the history event the transition produces.
	if err := rt.Navigate("/posts"); err != nil {
		t.Fatal(err)
	}

	if len(signals) < 2 {
		t.Fatalf("expected the navigation to arrive from both sources, got %d signals", len(signals))
	}
	for _, sig := range signals {
		if sig.Location.Path != "/posts" {
			t.Errorf("signal location = %q; every delivery must carry the same address", sig.Location.Path)
		}
	}
}
