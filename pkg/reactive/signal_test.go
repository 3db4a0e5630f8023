package reactive

import (
	"sync"
	"testing"
)

// testListener counts MarkDirty calls.
type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty++
}

func (l *testListener) ID() uint64 { return l.id }

func (l *testListener) dirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.dirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.dirtyCount())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.dirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.dirtyCount())
	}
}

func TestSignalEqualWriteDropped(t *testing.T) {
	tab := NewSignal("summary")
	listener := newTestListener()

	WithListener(listener, func() {
		_ = tab.Get()
	})

	// Writing the current value must not notify.
	tab.Set("summary")
	if listener.dirtyCount() != 0 {
		t.Errorf("equal write notified %d times, want 0", listener.dirtyCount())
	}

	tab.Set("details")
	if listener.dirtyCount() != 1 {
		t.Errorf("changed write notified %d times, want 1", listener.dirtyCount())
	}
}

func TestSignalCustomEquality(t *testing.T) {
	sig := NewSignalEq(map[string]string{"tag": "go"}, func(a, b map[string]string) bool {
		if len(a) != len(b) {
			return false
		}
		for k, v := range a {
			if b[k] != v {
				return false
			}
		}
		return true
	})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = sig.Get()
	})

	// A fresh map with the same contents compares equal.
	sig.Set(map[string]string{"tag": "go"})
	if listener.dirtyCount() != 0 {
		t.Errorf("equivalent map notified %d times, want 0", listener.dirtyCount())
	}

	sig.Set(map[string]string{"tag": "web"})
	if listener.dirtyCount() != 1 {
		t.Errorf("changed map notified %d times, want 1", listener.dirtyCount())
	}
}

func TestSignalSubscriberDeduplication(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
		_ = count.Get()
	})

	if n := count.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber after repeated reads, got %d", n)
	}

	count.Set(1)
	if listener.dirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.dirtyCount())
	}
}

func TestSignalUntrackedReadDoesNotSubscribe(t *testing.T) {
	count := NewSignal(0)
	_ = count.Get()
	if n := count.SubscriberCount(); n != 0 {
		t.Errorf("untracked read created %d subscriptions, want 0", n)
	}
}

func TestSignalConcurrentAccess(t *testing.T) {
	count := NewSignal(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			count.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = count.Get()
		}()
	}
	wg.Wait()
}
