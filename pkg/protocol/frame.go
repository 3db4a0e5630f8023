package protocol

import (
	"encoding/binary"
	"errors"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHello   FrameType = 0x00 // Connection setup: client reports its current URL
	FrameEvent   FrameType = 0x01 // Client → Server navigation events
	FramePatches FrameType = 0x02 // Server → Client patches
	FrameError   FrameType = 0x03 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame is a decoded wire frame.
type Frame struct {
	Type    FrameType
	Flags   uint8
	Payload []byte
}

// Frame decoding errors.
var (
	ErrFrameTooShort   = errors.New("protocol: frame shorter than header")
	ErrPayloadTooLarge = errors.New("protocol: payload exceeds maximum size")
	ErrPayloadLength   = errors.New("protocol: payload length mismatch")
)

// EncodeFrame encodes a frame: [type][flags][length:2 big-endian][payload].
func EncodeFrame(ft FrameType, flags uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, FrameHeaderSize+len(payload))
	buf[0] = byte(ft)
	buf[1] = flags
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(payload)))
	copy(buf[FrameHeaderSize:], payload)
	return buf, nil
}

// DecodeFrame decodes a wire frame. The returned payload aliases msg.
func DecodeFrame(msg []byte) (*Frame, error) {
	if len(msg) < FrameHeaderSize {
		return nil, ErrFrameTooShort
	}

	length := int(binary.BigEndian.Uint16(msg[2:4]))
	if len(msg)-FrameHeaderSize != length {
		return nil, ErrPayloadLength
	}

	return &Frame{
		Type:    FrameType(msg[0]),
		Flags:   msg[1],
		Payload: msg[FrameHeaderSize:],
	}, nil
}
