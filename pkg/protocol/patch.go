package protocol

import "errors"

// PatchOp is the type of patch operation sent to the client.
type PatchOp uint8

const (
	// PatchNavPush pushes a new history entry for Value (a URL reference).
	PatchNavPush PatchOp = 0x01

	// PatchNavReplace replaces the current history entry with Value
	// without reloading page data (shallow navigation).
	PatchNavReplace PatchOp = 0x02

	// PatchSetText replaces the text content of the element identified by
	// Target.
	PatchSetText PatchOp = 0x03

	// PatchSetAttr sets attribute Target to Value on the addressed widget.
	PatchSetAttr PatchOp = 0x04
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchNavPush:
		return "NavPush"
	case PatchNavReplace:
		return "NavReplace"
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	default:
		return "Unknown"
	}
}

// Patch is one instruction for the thin client.
type Patch struct {
	Op     PatchOp
	Target string
	Value  string
}

// NewNavPushPatch creates a patch that pushes url onto the client history.
func NewNavPushPatch(url string) Patch {
	return Patch{Op: PatchNavPush, Value: url}
}

// NewNavReplacePatch creates a patch that replaces the client's current
// history entry with url, shallowly.
func NewNavReplacePatch(url string) Patch {
	return Patch{Op: PatchNavReplace, Value: url}
}

// ErrInvalidPatches is returned when a patches payload cannot be decoded.
var ErrInvalidPatches = errors.New("protocol: invalid patches payload")

// EncodePatches encodes a patch list:
// [count][op][target string][value string]...
func EncodePatches(patches []Patch) []byte {
	buf := AppendUvarint(nil, uint64(len(patches)))
	for _, p := range patches {
		buf = append(buf, byte(p.Op))
		buf = AppendString(buf, p.Target)
		buf = AppendString(buf, p.Value)
	}
	return buf
}

// DecodePatches decodes a patch list payload.
func DecodePatches(payload []byte) ([]Patch, error) {
	count, n := DecodeUvarint(payload)
	if n < 0 {
		return nil, ErrInvalidPatches
	}
	// Each patch occupies at least three bytes; a larger count is a
	// malformed or hostile payload, not a short one.
	if count > uint64(len(payload)) {
		return nil, ErrInvalidPatches
	}
	rest := payload[n:]

	patches := make([]Patch, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(rest) < 1 {
			return nil, ErrInvalidPatches
		}
		p := Patch{Op: PatchOp(rest[0])}
		rest = rest[1:]

		var n int
		if p.Target, n = DecodeString(rest); n < 0 {
			return nil, ErrInvalidPatches
		}
		rest = rest[n:]
		if p.Value, n = DecodeString(rest); n < 0 {
			return nil, ErrInvalidPatches
		}
		rest = rest[n:]

		patches = append(patches, p)
	}
	if len(rest) != 0 {
		return nil, ErrInvalidPatches
	}
	return patches, nil
}
