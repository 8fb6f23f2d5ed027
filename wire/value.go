package wire

import (
	"math"
	"time"
)

// Value is the ZCL "any" attribute value: a one-byte type code followed by
// its payload. Data's concrete Go type depends on Type:
//
//	TypeBool                     -> bool
//	Type{Uint,Bitmap,Data}{8..64} -> uint64
//	Type{Int}{8..64}              -> int64
//	TypeEnum{8,16}                -> uint64
//	TypeFloat{16,32,64}           -> float64
//	TypeCharStr, TypeCharStr16    -> string (absent represented by Absent)
//	TypeOctStr, TypeOctStr16      -> []byte (nil represented by Absent)
//	TypeUTCTime                   -> time.Time
//	TypeIEEEAddr                  -> uint64
//	TypeArray, TypeSet, TypeBag   -> Collection
//	TypeStruct                    -> Struct
type Value struct {
	Data any
	Type TypeID
	// Absent marks a string/octet-string value that decoded the
	// "invalid/absent" length marker (0xFF or 0xFFFF) rather than an empty
	// string or zero-length octet string.
	Absent bool
}

// Collection is the decoded form of TypeArray/TypeSet/TypeBag: an inner
// element type code plus the decoded elements.
type Collection struct {
	Elements []Value
	Inner    TypeID
}

// Struct is the decoded form of TypeStruct: an ordered list of member
// values, each carrying its own type code.
type Struct struct {
	Members []Value
}

// zigbeeEpoch is 2000-01-01T00:00:00Z, the UTCTime reference per the ZCL
// specification (as opposed to the Unix epoch).
var zigbeeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Decode reads one value of the given type from b, advancing the cursor
// past it. It is the single entry point every frame/attribute decoder in
// this module goes through.
func Decode(b *Buffer, t TypeID) (Value, error) {
	switch t {
	case TypeNoData:
		return Value{Type: t}, nil

	case TypeBool:
		v, err := b.Byte()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: v != 0}, nil

	case TypeEnum8, TypeEnum16:
		v, err := b.Uint(widthOf(t))
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: v}, nil

	case TypeUTCTime:
		v, err := b.Uint(4)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: zigbeeEpoch.Add(time.Duration(v) * time.Second)}, nil

	case TypeIEEEAddr:
		v, err := b.Uint(8)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: v}, nil

	case TypeFloat16, TypeFloat32, TypeFloat64:
		return decodeFloat(b, t)

	case TypeOctStr, TypeCharStr:
		return decodeString(b, t, false)
	case TypeOctStr16, TypeCharStr16:
		return decodeString(b, t, true)

	case TypeArray, TypeSet, TypeBag:
		return decodeCollection(b, t)

	case TypeStruct:
		return decodeStruct(b)
	}

	if w := widthOf(t); w > 0 {
		v, err := b.Uint(w)
		if err != nil {
			return Value{}, err
		}
		if t >= TypeInt8 && t <= TypeInt64 {
			return Value{Type: t, Data: signExtend(v, w)}, nil
		}
		return Value{Type: t, Data: v}, nil
	}

	return Value{}, ErrUnknownTypeCode
}

// Encode serializes v.Data according to v.Type and appends it to dst,
// returning the extended slice.
func Encode(dst []byte, v Value) ([]byte, error) {
	switch v.Type {
	case TypeNoData:
		return dst, nil

	case TypeBool:
		b, _ := v.Data.(bool)
		if b {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil

	case TypeEnum8, TypeEnum16:
		return putUint(dst, v.Data.(uint64), widthOf(v.Type)), nil

	case TypeUTCTime:
		t, _ := v.Data.(time.Time)
		secs := uint64(t.Sub(zigbeeEpoch).Seconds())
		return putUint(dst, secs, 4), nil

	case TypeIEEEAddr:
		return putUint(dst, v.Data.(uint64), 8), nil

	case TypeFloat16, TypeFloat32, TypeFloat64:
		return encodeFloat(dst, v)

	case TypeOctStr, TypeCharStr:
		return encodeString(dst, v, false)
	case TypeOctStr16, TypeCharStr16:
		return encodeString(dst, v, true)

	case TypeArray, TypeSet, TypeBag:
		return encodeCollection(dst, v)

	case TypeStruct:
		return encodeStruct(dst, v)
	}

	if w := widthOf(v.Type); w > 0 {
		switch n := v.Data.(type) {
		case uint64:
			if n > maxUintForWidth(w) {
				return nil, ErrValueOutOfRange
			}
			return putUint(dst, n, w), nil
		case int64:
			return putUint(dst, uint64(n)&maxUintForWidth(w), w), nil
		}
	}

	return nil, ErrUnknownTypeCode
}

func signExtend(v uint64, width int) int64 {
	bits := uint(width) * 8
	signBit := uint64(1) << (bits - 1)
	if v&signBit != 0 && bits < 64 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}

func decodeFloat(b *Buffer, t TypeID) (Value, error) {
	switch t {
	case TypeFloat16:
		raw, err := b.Uint(2)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: half16ToFloat64(uint16(raw))}, nil
	case TypeFloat32:
		raw, err := b.Uint(4)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: float64(math.Float32frombits(uint32(raw)))}, nil
	default: // TypeFloat64
		raw, err := b.Uint(8)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Data: math.Float64frombits(raw)}, nil
	}
}

func encodeFloat(dst []byte, v Value) ([]byte, error) {
	f, _ := v.Data.(float64)
	switch v.Type {
	case TypeFloat16:
		return putUint(dst, uint64(float64ToHalf16(f)), 2), nil
	case TypeFloat32:
		return putUint(dst, uint64(math.Float32bits(float32(f))), 4), nil
	default: // TypeFloat64
		return putUint(dst, math.Float64bits(f), 8), nil
	}
}

func decodeString(b *Buffer, t TypeID, long bool) (Value, error) {
	var length int
	var invalid bool
	if long {
		n, err := b.Uint(2)
		if err != nil {
			return Value{}, err
		}
		invalid = n == invalidLongLen
		length = int(n)
	} else {
		n, err := b.Byte()
		if err != nil {
			return Value{}, err
		}
		invalid = n == invalidShortLen
		length = int(n)
	}

	if invalid {
		if t == TypeCharStr || t == TypeCharStr16 {
			return Value{Type: t, Data: "", Absent: true}, nil
		}
		return Value{Type: t, Data: []byte(nil), Absent: true}, nil
	}

	raw, err := b.Next(length)
	if err != nil {
		return Value{}, err
	}

	if t == TypeCharStr || t == TypeCharStr16 {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		return Value{Type: t, Data: string(cp)}, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Value{Type: t, Data: cp}, nil
}

func encodeString(dst []byte, v Value, long bool) ([]byte, error) {
	var length int
	var raw []byte

	if v.Absent {
		if long {
			return putUint(dst, invalidLongLen, 2), nil
		}
		return putUint(dst, invalidShortLen, 1), nil
	}

	switch data := v.Data.(type) {
	case string:
		raw = []byte(data)
	case []byte:
		raw = data
	default:
		return nil, ErrUnknownTypeCode
	}
	length = len(raw)

	maxLen := invalidShortLen - 1
	if long {
		maxLen = invalidLongLen - 1
	}
	if length > maxLen {
		return nil, ErrValueOutOfRange
	}

	if long {
		dst = putUint(dst, uint64(length), 2)
	} else {
		dst = putUint(dst, uint64(length), 1)
	}
	return append(dst, raw...), nil
}

func decodeCollection(b *Buffer, t TypeID) (Value, error) {
	innerByte, err := b.Byte()
	if err != nil {
		return Value{}, err
	}
	inner := TypeID(innerByte)

	count, err := b.Uint(2)
	if err != nil {
		return Value{}, err
	}

	elems := make([]Value, 0, count)
	for i := uint64(0); i < count; i++ {
		elem, err := Decode(b, inner)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
	}

	return Value{Type: t, Data: Collection{Inner: inner, Elements: elems}}, nil
}

func encodeCollection(dst []byte, v Value) ([]byte, error) {
	col, ok := v.Data.(Collection)
	if !ok {
		return nil, ErrUnknownTypeCode
	}
	dst = append(dst, byte(col.Inner))
	dst = putUint(dst, uint64(len(col.Elements)), 2)
	for _, elem := range col.Elements {
		out, err := Encode(dst, elem)
		if err != nil {
			return nil, err
		}
		dst = out
	}
	return dst, nil
}

func decodeStruct(b *Buffer) (Value, error) {
	count, err := b.Uint(2)
	if err != nil {
		return Value{}, err
	}
	members := make([]Value, 0, count)
	for i := uint64(0); i < count; i++ {
		tb, err := b.Byte()
		if err != nil {
			return Value{}, err
		}
		member, err := Decode(b, TypeID(tb))
		if err != nil {
			return Value{}, err
		}
		members = append(members, member)
	}
	return Value{Type: TypeStruct, Data: Struct{Members: members}}, nil
}

func encodeStruct(dst []byte, v Value) ([]byte, error) {
	s, ok := v.Data.(Struct)
	if !ok {
		return nil, ErrUnknownTypeCode
	}
	dst = putUint(dst, uint64(len(s.Members)), 2)
	for _, member := range s.Members {
		dst = append(dst, byte(member.Type))
		out, err := Encode(dst, member)
		if err != nil {
			return nil, err
		}
		dst = out
	}
	return dst, nil
}

// DecodeTagged reads a one-byte type code followed by its payload — the
// ZCL "any" value shape used for attribute read-response/report payloads.
func DecodeTagged(b *Buffer) (Value, error) {
	tb, err := b.Byte()
	if err != nil {
		return Value{}, err
	}
	return Decode(b, TypeID(tb))
}

// EncodeTagged serializes v preceded by its own type byte.
func EncodeTagged(dst []byte, v Value) ([]byte, error) {
	dst = append(dst, byte(v.Type))
	return Encode(dst, v)
}
