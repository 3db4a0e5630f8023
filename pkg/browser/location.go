package browser

import "strings"

// Location is an immutable snapshot of the address bar: path, query string
// and fragment. It is a value type; navigation never mutates a Location in
// place, it installs a new one.
type Location struct {
	// Path is the canonical route path, starting with "/".
	Path string

	// RawQuery is the query string without the leading "?".
	RawQuery string

	// Fragment is the fragment without the leading "#".
	Fragment string
}

// ParseLocation splits a raw URL reference ("/posts?tag=go#summary") into
// its parts. Absent query or fragment parse as empty strings, never as an
// error: an address with no fragment is a well-defined state.
func ParseLocation(raw string) Location {
	var loc Location

	raw, loc.Fragment, _ = strings.Cut(raw, "#")
	loc.Path, loc.RawQuery, _ = strings.Cut(raw, "?")
	if loc.Path == "" {
		loc.Path = "/"
	}
	return loc
}

// String reassembles the URL reference.
func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.Path)
	if l.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(l.RawQuery)
	}
	if l.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(l.Fragment)
	}
	return b.String()
}

// WithFragment returns a copy of l with the fragment replaced.
func (l Location) WithFragment(fragment string) Location {
	l.Fragment = fragment
	return l
}

// WithRawQuery returns a copy of l with the query string replaced.
func (l Location) WithRawQuery(rawQuery string) Location {
	l.RawQuery = rawQuery
	return l
}

// Equal reports whether two locations are the same address.
func (l Location) Equal(other Location) bool {
	return l == other
}
