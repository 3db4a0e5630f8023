package urlstate

import (
	"net/url"

	"github.com/webheroes-dev/insightful/pkg/browser"
)

// ReadFragment derives the selected identifier from the location fragment.
// An absent fragment yields def; a fragment that fails to percent-decode
// also yields def. Never an error: an address without a fragment is a
// well-defined state, and re-reading the same location always yields the
// same value.
func ReadFragment(loc browser.Location, def string) string {
	if loc.Fragment == "" {
		return def
	}
	frag, err := url.PathUnescape(loc.Fragment)
	if err != nil {
		return def
	}
	return frag
}

// ReadQuery derives a fresh key/value map from the location query string.
// Only the given keys are extracted; keys absent from the query fall back
// to defaults (when present there) and are omitted otherwise. With no keys
// given, every parsed parameter is included.
//
// A malformed query string is read best-effort: whatever parses
// contributes, the rest is treated as absent. The returned map is always
// newly allocated; values are replaced wholesale, never mutated in place.
func ReadQuery(loc browser.Location, keys []string, defaults map[string]string) map[string]string {
	// ParseQuery returns the pairs it could parse alongside the error.
	vals, _ := url.ParseQuery(loc.RawQuery)

	if len(keys) == 0 {
		out := make(map[string]string, len(vals))
		for k, vs := range vals {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		return out
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if vs, ok := vals[k]; ok && len(vs) > 0 {
			out[k] = vs[0]
			continue
		}
		if d, ok := defaults[k]; ok {
			out[k] = d
		}
	}
	return out
}
