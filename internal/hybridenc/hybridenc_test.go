package hybridenc

import "testing"

func TestDecodeMixedUTF8AndLegacy(t *testing.T) {
	// "café é": "caf" ASCII, 0xc3 0xa9 is UTF-8 for "é", " ", then a bare
	// 0xe9 which is cp1252's "é" on its own (not a valid UTF-8 lead byte
	// in this position), matching spec.md §8's hybrid-decode scenario.
	data := []byte{'c', 'a', 'f', 0xc3, 0xa9, ' ', 0xe9}
	d := NewDecoder(nil)
	got, err := d.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "café é"
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestSurrogateRangeExcluded(t *testing.T) {
	// 0xED 0xA0 0x80 would be the (invalid) UTF-8 encoding of U+D800, a
	// surrogate; it must NOT be treated as a valid 3-byte sequence.
	if n := validUTF8SeqLen([]byte{0xED, 0xA0, 0x80}, 0); n != 0 {
		t.Fatalf("validUTF8SeqLen matched a surrogate-range sequence, len=%d", n)
	}
}

func TestOverlongExcluded(t *testing.T) {
	// 0xE0 0x80 0x80 would be an overlong (non-canonical) encoding of
	// U+0000 and must not match.
	if n := validUTF8SeqLen([]byte{0xE0, 0x80, 0x80}, 0); n != 0 {
		t.Fatalf("validUTF8SeqLen matched an overlong sequence, len=%d", n)
	}
}

func TestASCIIDoesNotMatchMultibyte(t *testing.T) {
	if n := validUTF8SeqLen([]byte("a"), 0); n != 0 {
		t.Fatalf("validUTF8SeqLen matched an ASCII byte, len=%d", n)
	}
}

func TestFourByteSequence(t *testing.T) {
	// U+1F600 GRINNING FACE, encoded as F0 9F 98 80.
	data := []byte{0xF0, 0x9F, 0x98, 0x80}
	if n := validUTF8SeqLen(data, 0); n != 4 {
		t.Fatalf("validUTF8SeqLen = %d, want 4", n)
	}
	d := NewDecoder(nil)
	got, err := d.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "\U0001F600" {
		t.Fatalf("Decode = %q, want grinning face emoji", got)
	}
}
