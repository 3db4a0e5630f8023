package urlstate

import (
	"maps"
	"net/url"

	"github.com/webheroes-dev/insightful/pkg/browser"
	"github.com/webheroes-dev/insightful/pkg/reactive"
	"github.com/webheroes-dev/insightful/pkg/router"
)

// QueryValues synchronizes a set of key/value pairs, typically table
// filters, with the URL query string.
//
// Managed keys are declared up front; query parameters outside that set
// are preserved untouched by writes. Every derivation builds a fresh map,
// so consumers holding a previously read value never observe mutation.
type QueryValues struct {
	state lifecycleState

	keys     []string
	defaults map[string]string
	sig      *reactive.Signal[map[string]string]

	history  *browser.History
	router   *router.Router
	listener *NavListener
}

// NewQueryValues mounts a query-synchronized value set managing the given
// keys. Keys absent from the query read as their default (when one is
// given) and are omitted otherwise. The router may be nil; writes then
// replace the history entry directly.
func NewQueryValues(owner *reactive.Owner, h *browser.History, rt *router.Router, keys []string, defaults map[string]string) (*QueryValues, error) {
	qv := &QueryValues{
		keys:     append([]string(nil), keys...),
		defaults: maps.Clone(defaults),
		history:  h,
		router:   rt,
	}

	qv.sig = reactive.NewSignalEq(
		ReadQuery(h.Current(), qv.keys, qv.defaults),
		equalStringMaps,
	)

	var lc Lifecycle
	if rt != nil {
		lc = RouterLifecycle(rt)
	}
	listener, err := NewListener(HistorySource(h), lc, qv.derive)
	if err != nil {
		return nil, err
	}
	qv.listener = listener
	qv.state.activate()

	if owner != nil {
		owner.OnCleanup(qv.Teardown)
	}
	return qv, nil
}

func (qv *QueryValues) derive(sig NavigationSignal) {
	qv.sig.Set(ReadQuery(sig.Location, qv.keys, qv.defaults))
}

// Value returns the current filter map. The result is a copy; mutating it
// does not affect the synchronized state.
func (qv *QueryValues) Value() map[string]string {
	return maps.Clone(qv.sig.Get())
}

// Peek returns the current filter map without subscribing.
func (qv *QueryValues) Peek() map[string]string {
	return maps.Clone(qv.sig.Peek())
}

// Get returns a single filter value and whether it is set.
func (qv *QueryValues) Get(key string) (string, bool) {
	v, ok := qv.sig.Get()[key]
	return v, ok
}

// Set requests that the query string encode values. Managed keys missing
// from values are removed from the query; unmanaged parameters are
// preserved as-is. The write goes through the router's shallow replace and
// memory refreshes from the resulting NavigationSignal. After teardown,
// Set is a no-op.
func (qv *QueryValues) Set(values map[string]string) {
	if !qv.state.active() {
		return
	}

	cur := qv.history.Current()
	parsed, _ := url.ParseQuery(cur.RawQuery)

	for _, k := range qv.keys {
		if v, ok := values[k]; ok {
			parsed.Set(k, v)
		} else {
			parsed.Del(k)
		}
	}
	// No managed-key declaration means every written key is managed.
	if len(qv.keys) == 0 {
		for k, v := range values {
			parsed.Set(k, v)
		}
	}

	loc := cur.WithRawQuery(parsed.Encode())
	if qv.router != nil {
		_ = qv.router.Replace(loc)
		return
	}
	qv.history.Replace(loc)
}

// Bind returns the [currentValue, setValue] pair exposed to UI consumers.
func (qv *QueryValues) Bind() (func() map[string]string, func(map[string]string)) {
	return qv.Value, qv.Set
}

// Teardown releases the listener's subscriptions. Idempotent.
func (qv *QueryValues) Teardown() {
	if !qv.state.teardown() {
		return
	}
	qv.listener.Close()
}

// LiveSubscriptions reports the listener's live subscription count.
// Test probe for the zero-leak invariant.
func (qv *QueryValues) LiveSubscriptions() int {
	return qv.listener.LiveSubscriptions()
}

func equalStringMaps(a, b map[string]string) bool {
	return maps.Equal(a, b)
}
