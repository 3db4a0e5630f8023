package protocol

import "errors"

// EventType identifies a client → server navigation event.
type EventType uint8

const (
	// EventHashChange reports that the client's fragment changed
	// (location.hash assignment, or same-document traversal).
	EventHashChange EventType = 0x01

	// EventPopState reports a back/forward traversal; carries the full
	// restored location.
	EventPopState EventType = 0x02

	// EventNavigate reports an intercepted link click to be routed
	// client-side.
	EventNavigate EventType = 0x03
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventHashChange:
		return "HashChange"
	case EventPopState:
		return "PopState"
	case EventNavigate:
		return "Navigate"
	default:
		return "Unknown"
	}
}

// Event is a navigation event as reported by the thin client. Path, Query
// and Fragment carry the client's address parts at the time of the event.
type Event struct {
	Type     EventType
	Path     string
	Query    string
	Fragment string
}

// ErrInvalidEvent is returned when an event payload cannot be decoded.
var ErrInvalidEvent = errors.New("protocol: invalid event payload")

// EncodeEvent encodes an event payload:
// [type][path string][query string][fragment string].
func EncodeEvent(ev Event) []byte {
	buf := make([]byte, 0, 1+len(ev.Path)+len(ev.Query)+len(ev.Fragment)+3*MaxVarintLen)
	buf = append(buf, byte(ev.Type))
	buf = AppendString(buf, ev.Path)
	buf = AppendString(buf, ev.Query)
	buf = AppendString(buf, ev.Fragment)
	return buf
}

// DecodeEvent decodes an event payload.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	if len(payload) < 1 {
		return ev, ErrInvalidEvent
	}
	ev.Type = EventType(payload[0])
	rest := payload[1:]

	for _, field := range []*string{&ev.Path, &ev.Query, &ev.Fragment} {
		s, n := DecodeString(rest)
		if n < 0 {
			return Event{}, ErrInvalidEvent
		}
		*field = s
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return Event{}, ErrInvalidEvent
	}
	return ev, nil
}
