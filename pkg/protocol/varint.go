package protocol

// MaxVarintLen is the maximum number of bytes a varint can occupy.
// A uint64 requires at most 10 bytes in varint encoding.
const MaxVarintLen = 10

// AppendUvarint appends v in protobuf-style varint encoding: 7 bits of
// data per byte, MSB indicates continuation.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// DecodeUvarint decodes an unsigned varint from buf.
// Returns (value, bytesRead). If bytesRead < 0, decoding failed:
//   - -1: buffer too short (incomplete varint)
//   - -2: varint overflow (more than 10 bytes)
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint

	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// AppendString appends a uvarint-length-prefixed string.
func AppendString(buf []byte, s string) []byte {
	buf = AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// DecodeString decodes a uvarint-length-prefixed string from buf.
// Returns (value, bytesRead); bytesRead < 0 on malformed input.
func DecodeString(buf []byte) (string, int) {
	n, read := DecodeUvarint(buf)
	if read < 0 {
		return "", read
	}
	if uint64(len(buf)-read) < n {
		return "", -1
	}
	return string(buf[read : read+int(n)]), read + int(n)
}
