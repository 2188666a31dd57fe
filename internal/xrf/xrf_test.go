package xrf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	opts := Options{ByteOrder: binary.LittleEndian, Shift: 0}
	entries := map[int]Entry{
		1:   {Block: 1, Offset: 64, IsNew: true},
		2:   {Block: 1, Offset: 128, IsUpdated: true},
		130: {Block: 2, Offset: 0, IsNew: true, IsUpdated: true},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, entries, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf, opts)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for mfn, want := range entries {
		e, ok := got[mfn]
		if !ok {
			t.Fatalf("missing mfn %d in decoded result", mfn)
		}
		if e != want {
			t.Errorf("mfn %d = %+v, want %+v", mfn, e, want)
		}
	}
	if len(got) != len(entries) {
		t.Fatalf("decoded %d entries, want %d (zero entries must be omitted)", len(got), len(entries))
	}
}

func TestOffsetShift(t *testing.T) {
	opts := Options{ByteOrder: binary.LittleEndian, Shift: 2}
	e := Entry{Block: 5, Offset: 64, IsNew: true}
	word := opts.encodeEntry(e)
	got := opts.decodeEntry(word)
	if got != e {
		t.Fatalf("decodeEntry(encodeEntry(%+v)) = %+v", e, got)
	}
}

func TestNegativeBlockRoundTrips(t *testing.T) {
	opts := Options{ByteOrder: binary.LittleEndian, Shift: 0}
	e := Entry{Block: -1, Offset: 0}
	word := opts.encodeEntry(e)
	got := opts.decodeEntry(word)
	if got.Block != -1 {
		t.Fatalf("Block = %d, want -1", got.Block)
	}
}

func TestSingleBlockIndexIsNegative(t *testing.T) {
	opts := Options{ByteOrder: binary.LittleEndian, Shift: 0}
	var buf bytes.Buffer
	if err := Encode(&buf, map[int]Entry{1: {Block: 1, Offset: 4}}, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	word, err := opts.readWord(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readWord: %v", err)
	}
	if int32(word) >= 0 {
		t.Fatalf("expected the single block's leading index to be negative, got %d", int32(word))
	}
}
