package wire

import (
	"math"
	"testing"
	"time"

	"github.com/zhacore/zha/internal/testutil"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	out, err := Encode(nil, v)
	if err != nil {
		t.Fatalf("Encode(%+v): %v", v, err)
	}
	got, err := Decode(NewBuffer(out), v.Type)
	if err != nil {
		t.Fatalf("Decode(%x): %v", out, err)
	}
	return got
}

func TestRoundTripIntegers(t *testing.T) {
	cases := []Value{
		{Type: TypeUint8, Data: uint64(0)},
		{Type: TypeUint8, Data: uint64(255)},
		{Type: TypeUint16, Data: uint64(0x1234)},
		{Type: TypeUint24, Data: uint64(0x010203)},
		{Type: TypeUint32, Data: uint64(0xdeadbeef)},
		{Type: TypeUint40, Data: uint64(0x0102030405)},
		{Type: TypeUint48, Data: uint64(0x010203040506)},
		{Type: TypeUint56, Data: uint64(0x01020304050607)},
		{Type: TypeUint64, Data: uint64(0xffffffffffffffff)},
		{Type: TypeInt8, Data: int64(-1)},
		{Type: TypeInt8, Data: int64(-128)},
		{Type: TypeInt16, Data: int64(-12345)},
		{Type: TypeInt32, Data: int64(-1)},
		{Type: TypeInt64, Data: int64(math.MinInt64)},
		{Type: TypeBitmap8, Data: uint64(0xa5)},
		{Type: TypeBitmap32, Data: uint64(0x0f0f0f0f)},
		{Type: TypeEnum8, Data: uint64(3)},
		{Type: TypeEnum16, Data: uint64(300)},
		{Type: TypeIEEEAddr, Data: uint64(0x00124b0012345678)},
	}

	for _, c := range cases {
		got := roundTrip(t, c)
		if got.Data != c.Data {
			t.Errorf("type %s: got %#v want %#v", c.Type, got.Data, c.Data)
		}
	}
}

func TestRoundTripBool(t *testing.T) {
	for _, b := range []bool{true, false} {
		got := roundTrip(t, Value{Type: TypeBool, Data: b})
		if got.Data != b {
			t.Errorf("bool %v: got %#v", b, got.Data)
		}
	}
}

func TestRoundTripFloat(t *testing.T) {
	cases := []struct {
		name string
		typ  TypeID
		val  float64
	}{
		{"float32 pi", TypeFloat32, math.Pi},
		{"float32 zero", TypeFloat32, 0},
		{"float32 neg", TypeFloat32, -12.5},
		{"float64 pi", TypeFloat64, math.Pi},
		{"float64 inf", TypeFloat64, math.Inf(1)},
		{"float64 neg inf", TypeFloat64, math.Inf(-1)},
		{"float16 one", TypeFloat16, 1.0},
		{"float16 neg", TypeFloat16, -2.5},
		{"float16 zero", TypeFloat16, 0},
		{"float16 inf", TypeFloat16, math.Inf(1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := roundTrip(t, Value{Type: c.typ, Data: c.val})
			gf, _ := got.Data.(float64)
			if math.IsInf(c.val, 0) {
				if !math.IsInf(gf, int(math.Copysign(1, c.val))) {
					t.Errorf("got %v want inf", gf)
				}
				return
			}
			// float32/float16 lose precision; compare loosely.
			if math.Abs(gf-c.val) > 0.01 {
				t.Errorf("got %v want %v", gf, c.val)
			}
		})
	}
}

func TestRoundTripFloatNaN(t *testing.T) {
	out, err := Encode(nil, Value{Type: TypeFloat64, Data: math.NaN()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(NewBuffer(out), TypeFloat64)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	gf, _ := got.Data.(float64)
	if !math.IsNaN(gf) {
		t.Errorf("got %v, want NaN", gf)
	}
}

func TestRoundTripCharString(t *testing.T) {
	got := roundTrip(t, Value{Type: TypeCharStr, Data: "hello"})
	if got.Data != "hello" || got.Absent {
		t.Errorf("got %#v absent=%v", got.Data, got.Absent)
	}

	got = roundTrip(t, Value{Type: TypeCharStr, Data: ""})
	if got.Data != "" || got.Absent {
		t.Errorf("empty string: got %#v absent=%v", got.Data, got.Absent)
	}
}

func TestRoundTripCharStringAbsent(t *testing.T) {
	got := roundTrip(t, Value{Type: TypeCharStr, Absent: true})
	if !got.Absent {
		t.Errorf("expected Absent=true for 0xff length marker")
	}
}

func TestRoundTripLongCharStringAbsent(t *testing.T) {
	got := roundTrip(t, Value{Type: TypeCharStr16, Absent: true})
	if !got.Absent {
		t.Errorf("expected Absent=true for 0xffff length marker")
	}
}

func TestRoundTripOctetString(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	got := roundTrip(t, Value{Type: TypeOctStr, Data: raw})
	gb, _ := got.Data.([]byte)
	testutil.AssertLen(t, gb, len(raw))
	for i := range raw {
		if gb[i] != raw[i] {
			t.Errorf("byte %d: got %x want %x", i, gb[i], raw[i])
		}
	}
}

func TestRoundTripUTCTime(t *testing.T) {
	when := zigbeeEpoch.Add(1000 * time.Second)
	got := roundTrip(t, Value{Type: TypeUTCTime, Data: when})
	gt, _ := got.Data.(time.Time)
	if !gt.Equal(when) {
		t.Errorf("got %v want %v", gt, when)
	}
}

func TestRoundTripArray(t *testing.T) {
	col := Collection{
		Inner: TypeUint16,
		Elements: []Value{
			{Type: TypeUint16, Data: uint64(1)},
			{Type: TypeUint16, Data: uint64(2)},
			{Type: TypeUint16, Data: uint64(3)},
		},
	}
	got := roundTrip(t, Value{Type: TypeArray, Data: col})
	gc, ok := got.Data.(Collection)
	if !ok {
		t.Fatalf("got %#v, want Collection", got.Data)
	}
	if gc.Inner != TypeUint16 || len(gc.Elements) != 3 {
		t.Fatalf("got %+v", gc)
	}
	for i, e := range gc.Elements {
		if e.Data != col.Elements[i].Data {
			t.Errorf("element %d: got %v want %v", i, e.Data, col.Elements[i].Data)
		}
	}
}

func TestRoundTripStruct(t *testing.T) {
	s := Struct{Members: []Value{
		{Type: TypeUint8, Data: uint64(7)},
		{Type: TypeCharStr, Data: "x"},
	}}
	got := roundTrip(t, Value{Type: TypeStruct, Data: s})
	gs, ok := got.Data.(Struct)
	if !ok || len(gs.Members) != 2 {
		t.Fatalf("got %#v", got.Data)
	}
	if gs.Members[0].Data != uint64(7) || gs.Members[1].Data != "x" {
		t.Errorf("got %+v", gs.Members)
	}
}

func TestDecodeBufferTooShort(t *testing.T) {
	_, err := Decode(NewBuffer([]byte{0x01}), TypeUint32)
	testutil.AssertEqual(t, ErrBufferTooShort, err)
}

func TestDecodeUnknownTypeCode(t *testing.T) {
	_, err := Decode(NewBuffer([]byte{0x01}), TypeID(0x99))
	testutil.AssertEqual(t, ErrUnknownTypeCode, err)
}

func TestEncodeValueOutOfRange(t *testing.T) {
	_, err := Encode(nil, Value{Type: TypeUint24, Data: uint64(1 << 24)})
	testutil.AssertEqual(t, ErrValueOutOfRange, err)
}

func TestTaggedRoundTrip(t *testing.T) {
	v := Value{Type: TypeUint16, Data: uint64(0xabcd)}
	out, err := EncodeTagged(nil, v)
	if err != nil {
		t.Fatalf("EncodeTagged: %v", err)
	}
	if out[0] != byte(TypeUint16) {
		t.Fatalf("expected leading type byte, got %x", out[0])
	}
	got, err := DecodeTagged(NewBuffer(out))
	if err != nil {
		t.Fatalf("DecodeTagged: %v", err)
	}
	if got.Type != TypeUint16 || got.Data != uint64(0xabcd) {
		t.Errorf("got %+v", got)
	}
}

func TestTypeIDString(t *testing.T) {
	if TypeUint8.String() != "uint8" {
		t.Errorf("got %s", TypeUint8.String())
	}
	if got := TypeID(0x99).String(); got != "unknown(0x99)" {
		t.Errorf("got %s", got)
	}
}

func TestTypeIDIsAnalog(t *testing.T) {
	if !TypeUint16.IsAnalog() {
		t.Error("uint16 should be analog")
	}
	if TypeCharStr.IsAnalog() {
		t.Error("char string should not be analog")
	}
}
