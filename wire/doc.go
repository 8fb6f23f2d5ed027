// Package wire implements the Zigbee Cluster Library wire primitives: the
// fixed-width integers, floats, strings, and compound types that every ZCL
// and ZDO frame is built from, plus the one-byte-type-code tagged value used
// for attribute payloads of unknown shape.
//
// The codec is strictly length-prefixed and little-endian. Decoders never
// read past the end of the supplied buffer; running out of bytes returns
// ErrBufferTooShort rather than panicking.
//
// # Quick start
//
//	buf := wire.NewBuffer(data)
//	v, err := wire.Decode(buf, wire.TypeUint16)
//	if err != nil {
//	    // handle ErrBufferTooShort / ErrUnknownTypeCode
//	}
//
//	out, err := wire.Encode(nil, wire.Value{Type: wire.TypeUint16, Data: uint64(42)})
package wire
