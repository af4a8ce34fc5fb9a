package packstream_test

import (
	"bytes"
	"testing"

	"github.com/mickamy/go-bolt/packstream"
)

func encodeHex(t *testing.T, v packstream.Value) []byte {
	t.Helper()
	b, err := packstream.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func TestEncodeTinyInt(t *testing.T) {
	if got := encodeHex(t, packstream.Int(42)); !bytes.Equal(got, []byte{0x2A}) {
		t.Fatalf("encode(42) = % X, want 2A", got)
	}
	if got := encodeHex(t, packstream.Int(-1)); !bytes.Equal(got, []byte{0xFF}) {
		t.Fatalf("encode(-1) = % X, want FF", got)
	}
	if got := encodeHex(t, packstream.Int(-16)); !bytes.Equal(got, []byte{0xF0}) {
		t.Fatalf("encode(-16) = % X, want F0", got)
	}
	if got := encodeHex(t, packstream.Int(127)); !bytes.Equal(got, []byte{0x7F}) {
		t.Fatalf("encode(127) = % X, want 7F", got)
	}
}

func TestEncodeMinimalIntSizes(t *testing.T) {
	// 128 needs INT_16: INT_8 tops out at 127, which the tiny range already
	// covers, so INT_8 is minimal only for -128..-17 (e.g. -17 below).
	if got := encodeHex(t, packstream.Int(128)); !bytes.Equal(got, []byte{0xC9, 0x00, 0x80}) {
		t.Fatalf("encode(128) = % X, want C9 00 80", got)
	}
	if got := encodeHex(t, packstream.Int(-17)); !bytes.Equal(got, []byte{0xC8, 0xEF}) {
		t.Fatalf("encode(-17) = % X, want C8 EF", got)
	}
	if got := encodeHex(t, packstream.Int(40000)); !bytes.Equal(got, []byte{0xCA, 0x00, 0x00, 0x9C, 0x40}) {
		t.Fatalf("encode(40000) = % X, want CA 00 00 9C 40", got)
	}
	if got := encodeHex(t, packstream.Int(1<<40)); got[0] != 0xCB {
		t.Fatalf("encode(2^40) marker = 0x%02X, want CB", got[0])
	}
}

func TestEncodeStrings(t *testing.T) {
	if got := encodeHex(t, packstream.String("")); !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("encode(\"\") = % X, want 80", got)
	}
	if got := encodeHex(t, packstream.String("abc")); !bytes.Equal(got, []byte{0x83, 'a', 'b', 'c'}) {
		t.Fatalf("encode(\"abc\") = % X", got)
	}
	long := make([]byte, 16)
	for i := range long {
		long[i] = 'x'
	}
	got := encodeHex(t, packstream.String(string(long)))
	if got[0] != 0xD0 || got[1] != 16 {
		t.Fatalf("encode(16-byte string) header = % X, want D0 10", got[:2])
	}
}

func TestEncodeListAndMap(t *testing.T) {
	if got := encodeHex(t, packstream.List{}); !bytes.Equal(got, []byte{0x90}) {
		t.Fatalf("encode([]) = % X, want 90", got)
	}
	if got := encodeHex(t, packstream.Map{}); !bytes.Equal(got, []byte{0xA0}) {
		t.Fatalf("encode({}) = % X, want A0", got)
	}

	list := packstream.List{packstream.Int(1), packstream.Int(2), packstream.Int(3)}
	if got := encodeHex(t, list); !bytes.Equal(got, []byte{0x93, 0x01, 0x02, 0x03}) {
		t.Fatalf("encode([1,2,3]) = % X", got)
	}
}

func TestEncodeStructureNode(t *testing.T) {
	// Node{id=1, labels=[], properties={}} as v4 signature 0x4E.
	node := packstream.Structure{
		Signature: 0x4E,
		Fields: []packstream.Value{
			packstream.Int(1),
			packstream.List{},
			packstream.Map{},
		},
	}
	got := encodeHex(t, node)
	want := []byte{0xB3, 0x4E, 0x01, 0x90, 0xA0}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode(node) = % X, want % X", got, want)
	}
}

func TestEncodeBytesMinimalSize(t *testing.T) {
	b := packstream.Bytes([]byte{1, 2, 3})
	got := encodeHex(t, b)
	want := []byte{0xCC, 0x03, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode(bytes) = % X, want % X", got, want)
	}
}

func TestEncodeFloat(t *testing.T) {
	got := encodeHex(t, packstream.Float(1.1))
	if got[0] != 0xC1 || len(got) != 9 {
		t.Fatalf("encode(1.1) = % X, want marker C1 + 8 bytes", got)
	}
}
