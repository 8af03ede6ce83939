package cbor

import (
	"reflect"
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
)

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := fxcbor.Marshal(v)
	if err != nil {
		t.Fatalf("fxamacker marshal: %v", err)
	}
	return b
}

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want func(*Item) bool
	}{
		{"uint", uint64(42), func(i *Item) bool { v, err := i.AsUint(); return err == nil && v == 42 }},
		{"negint", int64(-7), func(i *Item) bool { v, err := i.AsInt(); return err == nil && v == -7 }},
		{"bytes", []byte{1, 2, 3}, func(i *Item) bool { v, err := i.AsBstr(); return err == nil && reflect.DeepEqual(v, []byte{1, 2, 3}) }},
		{"text", "hello", func(i *Item) bool { v, err := i.AsTstr(); return err == nil && v == "hello" }},
		{"true", true, func(i *Item) bool { v, err := i.AsBool(); return err == nil && v == true }},
		{"false", false, func(i *Item) bool { v, err := i.AsBool(); return err == nil && v == false }},
		{"null", nil, func(i *Item) bool { return i.IsNull() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := Decode(mustMarshal(t, tt.in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !tt.want(item) {
				t.Errorf("unexpected decoded item: %+v", item)
			}
		})
	}
}

func TestDecodeArray(t *testing.T) {
	data := mustMarshal(t, []interface{}{uint64(1), "two", true})
	item, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	arr, err := item.AsArray()
	if err != nil {
		t.Fatalf("AsArray: %v", err)
	}
	if len(arr) != 3 {
		t.Fatalf("len(arr) = %d, want 3", len(arr))
	}
	if v, _ := arr[0].AsUint(); v != 1 {
		t.Errorf("arr[0] = %d, want 1", v)
	}
	if v, _ := arr[1].AsTstr(); v != "two" {
		t.Errorf("arr[1] = %q, want two", v)
	}
	if v, _ := arr[2].AsBool(); v != true {
		t.Errorf("arr[2] = %v, want true", v)
	}
}

func TestDecodeMap(t *testing.T) {
	data := mustMarshal(t, map[string]interface{}{"a": uint64(1), "b": uint64(2)})
	item, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, err := item.AsMap()
	if err != nil {
		t.Fatalf("AsMap: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("m.Len() = %d, want 2", m.Len())
	}
	v, ok := m.GetText("a")
	if !ok {
		t.Fatalf("GetText(a) missing")
	}
	if u, _ := v.AsUint(); u != 1 {
		t.Errorf("m[a] = %d, want 1", u)
	}
}

func TestDecodeNestedArray(t *testing.T) {
	data := mustMarshal(t, []interface{}{[]interface{}{uint64(1), uint64(2)}, []interface{}{uint64(3)}})
	item, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	arr, err := item.AsArray()
	if err != nil {
		t.Fatalf("AsArray: %v", err)
	}
	if len(arr) != 2 {
		t.Fatalf("len = %d, want 2", len(arr))
	}
	inner, err := arr[0].AsArray()
	if err != nil {
		t.Fatalf("AsArray inner: %v", err)
	}
	if len(inner) != 2 {
		t.Errorf("len(inner) = %d, want 2", len(inner))
	}
}

func TestDecodeTag(t *testing.T) {
	data := mustMarshal(t, fxcbor.Tag{Number: 24, Content: []byte{0xde, 0xad}})
	item, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	num, wrapped, ok := item.Tag()
	if !ok {
		t.Fatalf("item is not a tag: %+v", item)
	}
	if num != 24 {
		t.Errorf("tag number = %d, want 24", num)
	}
	b, err := wrapped.AsBstr()
	if err != nil {
		t.Fatalf("AsBstr: %v", err)
	}
	if !reflect.DeepEqual(b, []byte{0xde, 0xad}) {
		t.Errorf("tag content = %v", b)
	}
	// Untag / AsBstr transparently see through the wrapper.
	if b2, err := item.AsBstr(); err != nil || !reflect.DeepEqual(b2, []byte{0xde, 0xad}) {
		t.Errorf("AsBstr through tag = %v, %v", b2, err)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	// Build MaxDepth+1 levels of nested single-element arrays.
	var v interface{} = uint64(1)
	for i := 0; i < MaxDepth+1; i++ {
		v = []interface{}{v}
	}
	data := mustMarshal(t, v)
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected depth error, got nil")
	} else if _, ok := err.(*DepthError); !ok {
		t.Errorf("expected *DepthError, got %T: %v", err, err)
	}
}

func TestDecodeDepthLimitOK(t *testing.T) {
	var v interface{} = uint64(1)
	for i := 0; i < MaxDepth-1; i++ {
		v = []interface{}{v}
	}
	data := mustMarshal(t, v)
	if _, err := Decode(data); err != nil {
		t.Fatalf("Decode at allowed depth failed: %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := mustMarshal(t, []byte{1, 2, 3, 4, 5})
	truncated := data[:len(data)-2]
	if _, err := Decode(truncated); err == nil {
		t.Fatalf("expected error decoding truncated byte string")
	}
}

func TestDecodeReservedAdditionalInfo(t *testing.T) {
	// Major type 0 (unsigned), additional info 28 (reserved).
	data := []byte{0x1C}
	_, err := Decode(data)
	if err == nil {
		t.Fatalf("expected reserved-additional-info error")
	}
	if _, ok := err.(*ReservedAdditionalInfoError); !ok {
		t.Errorf("expected *ReservedAdditionalInfoError, got %T: %v", err, err)
	}
}

func TestDecodeFloatRejected(t *testing.T) {
	// 0xfa is major 7 (simple/float), additional info 26: single-precision float.
	data := []byte{0xfa, 0x00, 0x00, 0x00, 0x00}
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected float rejection")
	} else if _, ok := err.(*UnsupportedSimpleError); !ok {
		t.Errorf("expected *UnsupportedSimpleError, got %T: %v", err, err)
	}
}

func TestDecodeUnexpectedBreak(t *testing.T) {
	data := []byte{0xFF}
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected unexpected-break error")
	} else if _, ok := err.(*UnexpectedBreakError); !ok {
		t.Errorf("expected *UnexpectedBreakError, got %T: %v", err, err)
	}
}

func TestDecodeIndefiniteArray(t *testing.T) {
	// Indefinite-length array [_ 1, 2] per RFC 8949 §3.2.1.
	data := []byte{0x9f, 0x01, 0x02, 0xff}
	item, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	arr, err := item.AsArray()
	if err != nil {
		t.Fatalf("AsArray: %v", err)
	}
	if len(arr) != 2 {
		t.Fatalf("len(arr) = %d, want 2", len(arr))
	}
	if v, _ := arr[0].AsUint(); v != 1 {
		t.Errorf("arr[0] = %d, want 1", v)
	}
}

func TestDecodeIndefiniteBytesRejected(t *testing.T) {
	// Indefinite-length byte string header (major 2, additional info 31).
	data := []byte{0x5f, 0x41, 0x01, 0xff}
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected indefinite-length byte string to be rejected")
	} else if _, ok := err.(*IndefiniteLengthError); !ok {
		t.Errorf("expected *IndefiniteLengthError, got %T: %v", err, err)
	}
}
