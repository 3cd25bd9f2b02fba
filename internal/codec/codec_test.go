// SPDX-License-Identifier:Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

var (
	testFlags = NewFlags("test_flags", 1,
		Variant{Name: "A", Value: 1},
		Variant{Name: "B", Value: 2},
	)
	testEnum = NewEnum("if_type", 4,
		Variant{Name: "IF_API_TYPE_HARDWARE", Value: 0},
		Variant{Name: "IF_API_TYPE_SUB", Value: 1},
		Variant{Name: "IF_API_TYPE_PIPE", Value: 3},
	)
	ip4 = NewFixedArray(U8, 4)
	ip6 = NewFixedArray(U8, 16)
	testUnion = NewUnion("address_union", 0,
		Field{Name: "ip4", Type: ip4},
		Field{Name: "ip6", Type: ip6},
	)
	entry = NewStruct("message_table_entry",
		Field{Name: "index", Type: U16},
		Field{Name: "name", Type: NewFixedString(64)},
	)
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   *Type
		value interface{}
		size  int
	}{
		{"u8", U8, uint8(0xfe), 1},
		{"u16", U16, uint16(0xbeef), 2},
		{"u32", U32, uint32(0xdeadbeef), 4},
		{"u64", U64, uint64(math.MaxUint64), 8},
		{"i8", I8, int8(-128), 1},
		{"i16", I16, int16(-2), 2},
		{"i32", I32, int32(math.MinInt32), 4},
		{"i64", I64, int64(-1), 8},
		{"bool true", Bool, true, 1},
		{"bool false", Bool, false, 1},
		{"f64", F64, 3.25, 8},
		{"f64 negative zero", F64, math.Copysign(0, -1), 8},
		{"empty variable string", NewVarString(), "", 4},
		{"variable string", NewVarString(), "show version", 16},
		{"fixed string at capacity", NewFixedString(8), FixedString("abcdefg\x00"), 8},
		{"fixed array", NewFixedArray(U32, 3), []interface{}{uint32(1), uint32(2), uint32(3)}, 12},
		{"fixed byte array", NewFixedArray(U8, 6), []byte{0xde, 0xad, 0xbe, 0xef, 0, 1}, 6},
		{"empty variable array", NewVarArray(U32), []interface{}{}, 0},
		{"variable array", NewVarArray(entry), []interface{}{
			Record{"index": uint16(1), "name": FixedString(pad("control_ping_51077d14", 64))},
			Record{"index": uint16(2), "name": FixedString(pad("control_ping_reply_f6b0b8ca", 64))},
		}, 132},
		{"enum", testEnum, EnumValue{Name: "IF_API_TYPE_PIPE", Value: 3}, 4},
		{"empty flags", testFlags, FlagSet{}, 1},
		{"all flags", testFlags, FlagSet{"B", "A"}, 1},
		{"union", testUnion, Union(pad("\x0a\x00\x00\x01", 16)), 16},
		{"struct", NewStruct("prefix",
			Field{Name: "len", Type: U8},
			Field{Name: "tag", Type: NewVarString()},
		), Record{"len": uint8(24), "tag": "uplink"}, 11},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.typ.Validate(); err != nil {
				t.Fatalf("invalid layout: %s", err)
			}
			b, err := Encode(tc.value, tc.typ)
			if err != nil {
				t.Fatalf("encode %s: %s", spew.Sdump(tc.value), err)
			}
			if len(b) != tc.size {
				t.Errorf("encoded size: want %d, got %d (%x)", tc.size, len(b), b)
			}
			got, n, err := Decode(b, tc.typ)
			if err != nil {
				t.Fatalf("decode %x: %s", b, err)
			}
			if n != len(b) {
				t.Errorf("consumed %d of %d bytes", n, len(b))
			}
			if diff := cmp.Diff(tc.value, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func pad(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func TestBigEndianScalars(t *testing.T) {
	b, err := Encode(Record{"a": uint16(0x0102), "b": uint32(0x03040506), "c": int8(-1)},
		NewStruct("s", Field{Name: "a", Type: U16}, Field{Name: "b", Type: U32}, Field{Name: "c", Type: I8}))
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{1, 2, 3, 4, 5, 6, 0xff}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}
}

func TestFloatByteOrder(t *testing.T) {
	b, err := Encode(1.0, F64)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}
}

func TestFixedStringCapacity(t *testing.T) {
	typ := NewFixedString(8)

	b, err := Encode("1234567", typ)
	if err != nil {
		t.Fatalf("encoding 7 bytes into capacity 8: %s", err)
	}
	if want := []byte("1234567\x00"); !bytes.Equal(want, b) {
		t.Errorf("want %q, got %q", want, b)
	}

	_, err = Encode("12345678", typ)
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("encoding 8 bytes into capacity 8: want ErrCapacity, got %v", err)
	}

	v, _, err := Decode([]byte("eth0\x00\x00\x00\x00"), typ)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	fs := v.(FixedString)
	if len(fs) != 8 {
		t.Errorf("raw fixed string should keep all 8 bytes, got %d", len(fs))
	}
	if fs.String() != "eth0" {
		t.Errorf("want %q, got %q", "eth0", fs.String())
	}
}

func TestVariableString(t *testing.T) {
	b, err := Encode("abc", NewVarString())
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{0, 0, 0, 3, 'a', 'b', 'c'}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}

	_, _, err = Decode([]byte{0, 0, 0, 5, 'a', 'b'}, NewVarString())
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("short string: want ErrTruncated, got %v", err)
	}
}

func TestFlags(t *testing.T) {
	b, err := Encode(FlagSet{"A", "B"}, testFlags)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{0x03}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}

	sparse := NewFlags("sparse", 1, Variant{Name: "ONE", Value: 1}, Variant{Name: "FOUR", Value: 4})
	v, _, err := Decode([]byte{0x05}, sparse)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if diff := cmp.Diff(FlagSet{"FOUR", "ONE"}, v); diff != "" {
		t.Errorf("decoded flags (-want +got):\n%s", diff)
	}

	_, _, err = Decode([]byte{0x08}, sparse)
	if !errors.Is(err, ErrUnknownFlag) {
		t.Errorf("undeclared bit: want ErrUnknownFlag, got %v", err)
	}

	if _, err := Encode(FlagSet{"C"}, testFlags); !errors.Is(err, ErrUnknownFlag) {
		t.Errorf("unknown flag name: want ErrUnknownFlag, got %v", err)
	}
	if _, err := Encode(uint8(4), testFlags); !errors.Is(err, ErrUnknownFlag) {
		t.Errorf("raw mask with undeclared bit: want ErrUnknownFlag, got %v", err)
	}
}

func TestVarArrayConsumesTrailingBytes(t *testing.T) {
	msg := NewStruct("msg",
		Field{Name: "count", Type: U16},
		Field{Name: "ids", Type: NewVarArray(U32)},
	)
	body := []byte{0, 3, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}
	v, n, err := Decode(body, msg)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if n != len(body) {
		t.Errorf("want all %d bytes consumed, got %d", len(body), n)
	}
	ids := v.(Record)["ids"].([]interface{})
	if len(ids) != 3 {
		t.Errorf("want 3 elements, got %d", len(ids))
	}

	_, _, err = Decode(append(body, 0xff), msg)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("partial trailing element: want ErrTruncated, got %v", err)
	}
}

func TestVarArrayMustBeLast(t *testing.T) {
	bad := NewStruct("bad",
		Field{Name: "ids", Type: NewVarArray(U32)},
		Field{Name: "count", Type: U16},
	)
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("want ErrInvalidLayout, got %v", err)
	}

	nested := NewStruct("outer",
		Field{Name: "inner", Type: NewStruct("inner", Field{Name: "ids", Type: NewVarArray(U32)})},
		Field{Name: "tail", Type: U8},
	)
	if err := nested.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("nested: want ErrInvalidLayout, got %v", err)
	}
}

func TestVarArrayNotLastFailsToEncode(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
	}{
		{
			name: "middle field",
			typ: NewStruct("bad",
				Field{Name: "a", Type: U8},
				Field{Name: "ids", Type: NewVarArray(U8)},
				Field{Name: "n", Type: U16},
			),
		},
		{
			name: "nested struct",
			typ: NewStruct("outer",
				Field{Name: "inner", Type: NewStruct("inner", Field{Name: "ids", Type: NewVarArray(U32)})},
				Field{Name: "tail", Type: U8},
			),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Encode(Record{}, test.typ); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("encode: want ErrInvalidLayout, got %v", err)
			}
			if _, _, err := Decode([]byte{1, 2, 0, 7}, test.typ); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("decode: want ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestValidateRejectsMultiBitFlags(t *testing.T) {
	f := NewFlags("sub_if_flags", 4, Variant{Name: "MASK", Value: 254})
	if err := f.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("want ErrInvalidLayout, got %v", err)
	}
}

func TestEncodeRejectsMultiBitFlags(t *testing.T) {
	f := NewFlags("f", 1,
		Variant{Name: "A", Value: 1},
		Variant{Name: "MASK", Value: 3},
	)
	if _, err := Encode(FlagSet{"MASK"}, f); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("encode: want ErrInvalidLayout, got %v", err)
	}
	if _, err := FlagsValue(FlagSet{"A", "MASK"}, f); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("flags value: want ErrInvalidLayout, got %v", err)
	}
	b, err := Encode(FlagSet{"A"}, f)
	if err != nil {
		t.Fatalf("single bit flag: %s", err)
	}
	if want := []byte{0x01}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}
}

func TestUnion(t *testing.T) {
	u, err := WriteAs(testUnion, "ip4", []byte{192, 168, 1, 1})
	if err != nil {
		t.Fatalf("write as ip4: %s", err)
	}
	if len(u) != 16 {
		t.Errorf("union buffer should be 16 bytes, got %d", len(u))
	}
	if !bytes.Equal(u[4:], make([]byte, 12)) {
		t.Errorf("union tail not zero padded: %x", u)
	}

	v, err := ReadAs(u, testUnion, "ip4")
	if err != nil {
		t.Fatalf("read as ip4: %s", err)
	}
	if diff := cmp.Diff([]byte{192, 168, 1, 1}, v); diff != "" {
		t.Errorf("read back (-want +got):\n%s", diff)
	}

	// Reading the other member is allowed and never panics.
	if _, err := ReadAs(u, testUnion, "ip6"); err != nil {
		t.Errorf("read as ip6: %s", err)
	}

	if _, err := WriteAs(NewUnion("small", 2, Field{Name: "ip4", Type: ip4}), "ip4", []byte{1, 2, 3, 4}); !errors.Is(err, ErrCapacity) {
		t.Errorf("oversized member: want ErrCapacity, got %v", err)
	}
}

func TestEnum(t *testing.T) {
	b, err := Encode("IF_API_TYPE_SUB", testEnum)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{0, 0, 0, 1}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}

	if _, _, err := Decode([]byte{0, 0, 0, 2}, testEnum); !errors.Is(err, ErrUnknownDiscriminant) {
		t.Errorf("want ErrUnknownDiscriminant, got %v", err)
	}
	if _, err := Encode("IF_API_TYPE_BOGUS", testEnum); !errors.Is(err, ErrUnknownDiscriminant) {
		t.Errorf("want ErrUnknownDiscriminant, got %v", err)
	}
}

func TestNarrowEnum(t *testing.T) {
	wide := NewEnum("wide", 4,
		Variant{Name: "SMALL", Value: 7},
		Variant{Name: "LARGE", Value: 300},
	)
	narrow := Narrow(wide, 1)

	b, err := Encode("SMALL", narrow)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{7}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}
	if _, err := Encode("LARGE", narrow); !errors.Is(err, ErrOverflow) {
		t.Errorf("want ErrOverflow, got %v", err)
	}
	if wide.Width != 4 {
		t.Errorf("narrowing must not modify the original enum")
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		typ   *Type
		value interface{}
		want  error
	}{
		{"u8 overflow", U8, 256, ErrOverflow},
		{"negative unsigned", U32, -1, ErrOverflow},
		{"i8 overflow", I8, 200, ErrOverflow},
		{"fractional", U16, 1.5, ErrOverflow},
		{"wrong type", Bool, "yes", ErrInvalidValue},
		{"fixed array too long", NewFixedArray(U8, 2), []byte{1, 2, 3}, ErrCapacity},
		{"union too long", testUnion, make([]byte, 17), ErrCapacity},
		{"unknown field", entry, Record{"indx": 1}, ErrInvalidValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.value, tc.typ)
			if !errors.Is(err, tc.want) {
				t.Errorf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEncodeZeroAndJSONValues(t *testing.T) {
	msg := NewStruct("sw_interface_dump",
		Field{Name: "sw_if_index", Type: U32},
		Field{Name: "name_filter_valid", Type: Bool},
		Field{Name: "name_filter", Type: NewVarString()},
	)
	b, err := Encode(Record{"sw_if_index": json.Number("4294967295")}, msg)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if want := []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0}; !bytes.Equal(want, b) {
		t.Errorf("want %x, got %x", want, b)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode([]byte{0, 1}, entry)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("want ErrTruncated, got %v", err)
	}
}

func FuzzDecode(f *testing.F) {
	msg := NewStruct("fuzz",
		Field{Name: "flags", Type: testFlags},
		Field{Name: "kind", Type: testEnum},
		Field{Name: "name", Type: NewVarString()},
		Field{Name: "addr", Type: testUnion},
		Field{Name: "table", Type: NewVarArray(entry)},
	)
	f.Add([]byte{0x01, 0, 0, 0, 1, 0, 0, 0, 0})
	f.Fuzz(func(t *testing.T, b []byte) {
		_, n, err := Decode(b, msg)
		if err == nil && n != len(b) {
			t.Fatalf("trailing variable array left %d of %d bytes", len(b)-n, len(b))
		}
	})
}
