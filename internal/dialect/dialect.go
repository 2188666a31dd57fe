// Package dialect loads named MST dialect presets from TOML, so a CLI
// invocation can select a whole combination of mst.Options with a single
// --dialect=<name> flag instead of spelling out every low-level flag.
//
// Grounded on the teacher's own configuration layer: holo-build drives
// every package generator from a BurntSushi/toml-decoded build
// manifest (src/holo-build/common/build.go's Definition), so dialect
// presets are decoded the same way here, just into an MST-shaped struct
// instead of a package build manifest.
package dialect

import (
	_ "embed"
	"encoding/binary"

	"github.com/BurntSushi/toml"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/mst"
)

//go:embed dialects.toml
var builtinTOML []byte

// Preset is one named dialect's TOML-decoded shape.
type Preset struct {
	Format        string `toml:"format"` // "isis" or "ffi"
	Packed        bool   `toml:"packed"`
	Lockable      bool   `toml:"lockable"`
	BigEndian     bool   `toml:"big_endian"`
	MinModulus    int    `toml:"min_modulus"`
	ControlLen    int    `toml:"control_len"`
	RecordFiller  int    `toml:"record_filler"`
	BlockFiller   int    `toml:"block_filler"`
	ControlFiller int    `toml:"control_filler"`
	Shift4Is3     bool   `toml:"shift4_is3"`
}

type file struct {
	Presets map[string]Preset `toml:"presets"`
}

// ToMSTOptions converts the preset into a ready-to-validate mst.Options.
func (p Preset) ToMSTOptions() (mst.Options, error) {
	opts := mst.DefaultOptions()
	switch p.Format {
	case "isis", "":
		opts.Format = mst.ISIS
	case "ffi":
		opts.Format = mst.FFI
	default:
		return mst.Options{}, errs.NewConfigurationError("dialect: unknown format %q", p.Format)
	}
	opts.Packed = p.Packed
	opts.Lockable = p.Lockable
	if p.BigEndian {
		opts.ByteOrder = binary.BigEndian
	} else {
		opts.ByteOrder = binary.LittleEndian
	}
	if p.MinModulus > 0 {
		opts.MinModulus = p.MinModulus
	}
	if p.ControlLen > 0 {
		opts.ControlLen = p.ControlLen
	}
	opts.RecordFiller = byte(p.RecordFiller)
	opts.BlockFiller = byte(p.BlockFiller)
	opts.ControlFiller = byte(p.ControlFiller)
	opts.Shift4Is3 = p.Shift4Is3
	return opts, nil
}

// Load decodes a TOML document into its named presets.
func Load(data []byte) (map[string]Preset, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errs.NewConfigurationError("dialect: %s", err.Error())
	}
	return f.Presets, nil
}

// Builtin returns ioisis's bundled dialect presets.
func Builtin() map[string]Preset {
	presets, err := Load(builtinTOML)
	if err != nil {
		// The bundled file is part of the binary; a decode failure here
		// would be a packaging bug, not a user-facing condition.
		panic(err)
	}
	return presets
}

// Lookup returns the named preset from presets (builtin plus any
// user-supplied override file merged by the caller).
func Lookup(presets map[string]Preset, name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, errs.NewConfigurationError("dialect: unknown dialect %q", name)
	}
	return p, nil
}
