package wire

import "errors"

// Errors returned by the codec. These are the spec's "Codec errors" — at the
// dispatch layer a malformed inbound frame is logged and dropped rather than
// propagated (see the controller package), but Encode/Decode themselves
// always report them to their caller.
var (
	// ErrBufferTooShort is returned when a decoder would need to read past
	// the end of the supplied buffer.
	ErrBufferTooShort = errors.New("wire: buffer too short")

	// ErrUnknownTypeCode is returned when a tagged value's type byte does
	// not match any known TypeID.
	ErrUnknownTypeCode = errors.New("wire: unknown type code")

	// ErrValueOutOfRange is returned when an encode is asked to serialize a
	// value that cannot be represented in the target width (e.g. a uint64
	// that does not fit in 24 bits for TypeUint24).
	ErrValueOutOfRange = errors.New("wire: value out of range")
)

// Buffer is a read cursor over a byte slice, shared by every decoder in this
// package so that "ran out of bytes" is detected and reported from one place.
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer wraps data for decoding. The buffer does not copy data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int {
	return len(b.data) - b.pos
}

// Remaining returns the unread tail of the buffer without advancing it.
func (b *Buffer) Remaining() []byte {
	return b.data[b.pos:]
}

// Next consumes and returns the next n bytes, or ErrBufferTooShort if fewer
// than n bytes remain.
func (b *Buffer) Next(n int) ([]byte, error) {
	if n < 0 || b.Len() < n {
		return nil, ErrBufferTooShort
	}
	out := b.data[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

// Byte consumes and returns the next single byte.
func (b *Buffer) Byte() (byte, error) {
	out, err := b.Next(1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Uint advances n little-endian bytes and returns them as a uint64,
// the shared implementation behind every fixed-width unsigned decode
// (including the 24/40/48/56-bit widths, carried as the next larger
// native width).
func (b *Buffer) Uint(n int) (uint64, error) {
	raw, err := b.Next(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(raw[i])
	}
	return v, nil
}
