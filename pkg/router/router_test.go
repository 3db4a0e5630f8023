package router

import (
	"errors"
	"testing"

	"github.com/webheroes-dev/insightful/pkg/browser"
)

func newTestRouter() (*Router, *browser.History) {
	h := browser.NewHistory(browser.Location{Path: "/"})
	return New(h), h
}

func TestRouterStartsNotReady(t *testing.T) {
	r, _ := newTestRouter()

	if r.Ready() {
		t.Error("router should start not ready")
	}

	_, err := r.Subscribe(func(Event) {})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Subscribe before ready returned %v, want ErrNotReady", err)
	}
}

func TestRouterSubscribeAfterReady(t *testing.T) {
	r, _ := newTestRouter()
	r.SetReady(true)

	sub, err := r.Subscribe(func(Event) {})
	if err != nil {
		t.Fatalf("Subscribe after ready: %v", err)
	}
	if r.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", r.SubscriberCount())
	}

	sub.Release()
	sub.Release()
	if r.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d after release, want 0", r.SubscriberCount())
	}
}

func TestRouterReadyNotification(t *testing.T) {
	r, _ := newTestRouter()

	var flips []bool
	r.OnReadyChange(func(ready bool) { flips = append(flips, ready) })

	r.SetReady(true)
	r.SetReady(true) // no-op
	r.SetReady(false)

	want := []bool{true, false}
	if len(flips) != len(want) {
		t.Fatalf("observed flips %v, want %v", flips, want)
	}
	for i := range want {
		if flips[i] != want[i] {
			t.Errorf("flips[%d] = %v, want %v", i, flips[i], want[i])
		}
	}
}

func TestRouterNavigateLifecycleOrder(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	var stages []Stage
	r.Subscribe(func(ev Event) { stages = append(stages, ev.Stage) })

	if err := r.Navigate("/posts"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if len(stages) != 2 || stages[0] != StageWillStart || stages[1] != StageDidStart {
		t.Errorf("lifecycle stages = %v, want [navigationWillStart navigationDidStart]", stages)
	}
	if h.Current().Path != "/posts" {
		t.Errorf("history path = %q, want %q", h.Current().Path, "/posts")
	}
	if h.Length() != 2 {
		t.Errorf("history length = %d, want 2", h.Length())
	}
}

func TestRouterNavigateCanonicalizedReplaces(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	// Canonicalization changed the path, so no new entry is pushed.
	if err := r.Navigate("/posts/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if h.Current().Path != "/posts" {
		t.Errorf("path = %q, want %q", h.Current().Path, "/posts")
	}
	if h.Length() != 1 {
		t.Errorf("length = %d, want 1", h.Length())
	}
}

func TestRouterNavigateCarriesQuery(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	var to browser.Location
	r.Subscribe(func(ev Event) {
		if ev.Stage == StageWillStart {
			to = ev.To
		}
	})

	if err := r.Navigate("/posts?tag=go"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if to.RawQuery != "tag=go" {
		t.Errorf("lifecycle To.RawQuery = %q, want %q", to.RawQuery, "tag=go")
	}
	if h.Current().RawQuery != "tag=go" {
		t.Errorf("history RawQuery = %q, want %q", h.Current().RawQuery, "tag=go")
	}
}

func TestRouterNavigateInvalidPath(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	var fired int
	r.Subscribe(func(Event) { fired++ })

	if err := r.Navigate(`/evil\path`); err == nil {
		t.Fatal("Navigate with backslash path should fail")
	}
	if fired != 0 {
		t.Errorf("failed navigation fired %d lifecycle events, want 0", fired)
	}
	if h.Length() != 1 {
		t.Errorf("failed navigation changed history length to %d", h.Length())
	}
}

func TestRouterReplaceIsShallow(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	var events []Event
	r.Subscribe(func(ev Event) { events = append(events, ev) })

	loc := browser.Location{Path: "/", Fragment: "details"}
	if err := r.Replace(loc); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if h.Length() != 1 {
		t.Errorf("Replace changed history length to %d", h.Length())
	}
	if h.Current().Fragment != "details" {
		t.Errorf("fragment = %q, want %q", h.Current().Fragment, "details")
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 lifecycle events, got %d", len(events))
	}
	for _, ev := range events {
		if !ev.Shallow {
			t.Errorf("%s event not marked shallow", ev.Stage)
		}
	}
}

func TestRouterPushShallowAddsEntry(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	if err := r.Push(browser.Location{Path: "/", RawQuery: "tag=go"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if h.Length() != 2 {
		t.Errorf("shallow Push length = %d, want 2", h.Length())
	}
}

func TestRouterNoLifecycleEventsWhileNotReady(t *testing.T) {
	r, h := newTestRouter()
	r.SetReady(true)

	var fired int
	r.Subscribe(func(Event) { fired++ })

	r.SetReady(false)
	// The transition still lands; only lifecycle events are suppressed.
	if err := r.Replace(browser.Location{Path: "/", Fragment: "x"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if fired != 0 {
		t.Errorf("not-ready router fired %d lifecycle events, want 0", fired)
	}
	if h.Current().Fragment != "x" {
		t.Error("transition should land regardless of readiness")
	}
}
