package dialect

import (
	"encoding/binary"
	"testing"

	"github.com/scieloorg/ioisis-go/internal/mst"
)

func TestBuiltinPresetsLoad(t *testing.T) {
	presets := Builtin()
	for _, name := range []string{"isis", "isis-packed", "ffi", "ffi-unpacked"} {
		if _, ok := presets[name]; !ok {
			t.Errorf("missing builtin preset %q", name)
		}
	}
}

func TestISISPresetMatchesDefaultOptions(t *testing.T) {
	presets := Builtin()
	p, err := Lookup(presets, "isis")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	opts, err := p.ToMSTOptions()
	if err != nil {
		t.Fatalf("ToMSTOptions: %v", err)
	}
	want := mst.DefaultOptions()
	if opts.Format != want.Format || opts.Packed != want.Packed || opts.Lockable != want.Lockable {
		t.Errorf("opts = %+v, want defaults-equivalent %+v", opts, want)
	}
	if opts.ByteOrder != binary.LittleEndian {
		t.Errorf("ByteOrder = %v, want LittleEndian", opts.ByteOrder)
	}
}

func TestFFIUnpackedPresetOptions(t *testing.T) {
	presets := Builtin()
	p, err := Lookup(presets, "ffi-unpacked")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	opts, err := p.ToMSTOptions()
	if err != nil {
		t.Fatalf("ToMSTOptions: %v", err)
	}
	if opts.Format != mst.FFI || opts.Packed {
		t.Fatalf("opts = %+v, want FFI unpacked", opts)
	}
}

func TestLookupUnknownDialect(t *testing.T) {
	if _, err := Lookup(Builtin(), "nope"); err == nil {
		t.Fatal("expected an error for an unknown dialect")
	}
}
