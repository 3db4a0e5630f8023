package protocol

import "errors"

// Hello is the connection setup payload: the client reports the address
// bar it starts from, so the server can seed its session history before
// any navigation event arrives.
type Hello struct {
	Path     string
	Query    string
	Fragment string
}

// ErrInvalidHello is returned when a hello payload cannot be decoded.
var ErrInvalidHello = errors.New("protocol: invalid hello payload")

// EncodeHello encodes a hello payload:
// [path string][query string][fragment string].
func EncodeHello(h Hello) []byte {
	buf := make([]byte, 0, len(h.Path)+len(h.Query)+len(h.Fragment)+3*MaxVarintLen)
	buf = AppendString(buf, h.Path)
	buf = AppendString(buf, h.Query)
	buf = AppendString(buf, h.Fragment)
	return buf
}

// DecodeHello decodes a hello payload.
func DecodeHello(payload []byte) (Hello, error) {
	var h Hello
	rest := payload
	for _, field := range []*string{&h.Path, &h.Query, &h.Fragment} {
		s, n := DecodeString(rest)
		if n < 0 {
			return Hello{}, ErrInvalidHello
		}
		*field = s
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return Hello{}, ErrInvalidHello
	}
	return h, nil
}
