// Package mst implements the CDS/ISIS "Master File" binary record codec
// (SPEC_FULL.md §4.4/§4.5): a block-aligned sequence of variable-length
// records, each with a dialect-dependent fixed leader and directory,
// preceded by a control record and optionally accompanied by a separate
// XRF cross-reference file (package internal/xrf).
//
// Grounded structurally on rpm/header.go's HeaderIndexRecord (a directory
// of fixed-width binary entries pointing into a separately-stored data
// blob) from holo-build, generalized to MST's four leader/directory
// dialects and its block-alignment rule; the four-combination leader and
// directory byte layouts themselves are transcribed directly from
// spec.md §4.4 since original_source/ioisis/mst.py never parses the
// binary format itself (it delegates to the bundled Bruma.jar via a JVM
// bridge, so there is no lower-level Python reference to follow here).
package mst

import (
	"encoding/binary"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// Format selects the directory/leader family.
type Format int

const (
	ISIS Format = iota
	FFI
)

// IBPPolicy selects how invalid block padding is handled on read.
type IBPPolicy int

const (
	IBPCheck IBPPolicy = iota
	IBPIgnore
	IBPStore
)

const blockSize = 512

// Options configures the MST dialect: byte order, leader/directory
// family, lock-flag interpretation, the MSTXL shift/modulus derivation,
// the control record length, and the four filler bytes.
type Options struct {
	ByteOrder     binary.ByteOrder
	Format        Format
	Packed        bool
	Lockable      bool
	Shift         int // MSTXL; 0 means "derive from the control record on read"
	MinModulus    int
	ControlLen    int
	RecordFiller  byte
	BlockFiller   byte
	ControlFiller byte
	IBP           IBPPolicy
	Shift4Is3     bool // legacy remap: mstxl==4 means shift=3
}

// DefaultShift is the MSTXL written into a freshly built file's control
// record when the caller does not request a specific shift.
const DefaultShift = 6

// DefaultOptions reproduces the classic CDS/ISIS dialect: little-endian,
// ISIS format, unpacked, lockable, min_modulus 2, control_len 64,
// fillers space/0x00/0x00.
func DefaultOptions() Options {
	return Options{
		ByteOrder:     binary.LittleEndian,
		Format:        ISIS,
		Packed:        false,
		Lockable:      true,
		MinModulus:    2,
		ControlLen:    64,
		RecordFiller:  0x20,
		BlockFiller:   0x00,
		ControlFiller: 0x00,
		IBP:           IBPCheck,
		Shift4Is3:     true,
	}
}

func (o Options) validate() error {
	if o.ControlLen < 32 {
		return errs.NewConfigurationError("mst: control_len must be at least 32, got %d", o.ControlLen)
	}
	if o.MinModulus < 1 {
		return errs.NewConfigurationError("mst: min_modulus must be at least 1")
	}
	return nil
}

// modulus derives the record-padding modulus from a shift value (MSTXL,
// possibly remapped by the legacy shift4is3 rule).
func (o Options) modulus(shift int) int {
	if o.Shift4Is3 && shift == 4 {
		shift = 3
	}
	m := 1 << uint(shift)
	if o.MinModulus > m {
		return o.MinModulus
	}
	return m
}

// leaderLen returns the per-record leader length for this dialect: one
// of 18, 20, 22, 24.
func (o Options) leaderLen() int {
	switch {
	case o.Format == ISIS && o.Packed:
		return 18
	case o.Format == ISIS && !o.Packed:
		return 20
	case o.Format == FFI && o.Packed:
		return 22
	default: // FFI && !Packed
		return 24
	}
}

// mfrlWidth returns the byte width of the mfrl leader field: 2 for ISIS,
// 4 for FFI.
func (o Options) mfrlWidth() int {
	if o.Format == ISIS {
		return 2
	}
	return 4
}

// baseAddrWidth returns the byte width of the base_addr leader field: 2
// for ISIS, 4 for FFI.
func (o Options) baseAddrWidth() int {
	if o.Format == ISIS {
		return 2
	}
	return 4
}

// dirEntryLen returns the per-entry directory width: 6 for ISIS
// (tag/pos/len all U16), 10 for FFI+packed (tag U16, pos/len U32), 12
// for FFI+unpacked (2 bytes of slack after the tag).
func (o Options) dirEntryLen() int {
	if o.Format == ISIS {
		return 6
	}
	if o.Packed {
		return 10
	}
	return 12
}

// Field is one (tag, value) entry in an MST record's field area.
type Field struct {
	Tag   uint16
	Value []byte
}

// Record is a fully parsed/buildable MST record.
type Record struct {
	MFN    int32
	Status uint16
	Fields []Field
}

// leader is the decoded fixed-width per-record leader.
type leader struct {
	MFN       int32
	MFRL      int32 // magnitude only; RLOCK/size-doubling handled by caller
	Locked    bool
	OldBlock  int32
	OldOffset uint16
	BaseAddr  uint32
	NumFields uint16
	Status    uint16
}

func (o Options) encodeLeader(l leader) []byte {
	buf := make([]byte, o.leaderLen())
	off := 0
	o.ByteOrder.PutUint32(buf[off:], uint32(l.MFN))
	off += 4

	mfrl := l.MFRL
	if o.Lockable && l.Locked {
		mfrl = -mfrl
	} else if !o.Lockable {
		mfrl = mfrl * 2
	}
	switch o.mfrlWidth() {
	case 2:
		o.ByteOrder.PutUint16(buf[off:], uint16(int16(mfrl)))
		off += 2
	case 4:
		o.ByteOrder.PutUint32(buf[off:], uint32(mfrl))
		off += 4
	}
	if o.Format == ISIS && !o.Packed {
		off += 2 // slack
	}

	o.ByteOrder.PutUint32(buf[off:], uint32(l.OldBlock))
	off += 4
	o.ByteOrder.PutUint16(buf[off:], l.OldOffset)
	off += 2
	if o.Format == FFI && !o.Packed {
		off += 2 // slack
	}

	switch o.baseAddrWidth() {
	case 2:
		o.ByteOrder.PutUint16(buf[off:], uint16(l.BaseAddr))
		off += 2
	case 4:
		o.ByteOrder.PutUint32(buf[off:], l.BaseAddr)
		off += 4
	}

	o.ByteOrder.PutUint16(buf[off:], l.NumFields)
	off += 2
	o.ByteOrder.PutUint16(buf[off:], l.Status)
	off += 2
	return buf
}

func (o Options) decodeLeader(buf []byte) (leader, error) {
	if len(buf) < o.leaderLen() {
		return leader{}, &errs.UnexpectedEOF{Context: "MST leader"}
	}
	var l leader
	off := 0
	l.MFN = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4

	var mfrl int32
	switch o.mfrlWidth() {
	case 2:
		mfrl = int32(int16(o.ByteOrder.Uint16(buf[off:])))
		off += 2
	case 4:
		mfrl = int32(o.ByteOrder.Uint32(buf[off:]))
		off += 4
	}
	if o.Format == ISIS && !o.Packed {
		off += 2
	}
	if o.Lockable {
		if mfrl < 0 {
			l.Locked = true
			mfrl = -mfrl
		}
		l.MFRL = mfrl
	} else {
		l.MFRL = mfrl / 2
	}

	l.OldBlock = int32(o.ByteOrder.Uint32(buf[off:]))
	off += 4
	l.OldOffset = o.ByteOrder.Uint16(buf[off:])
	off += 2
	if o.Format == FFI && !o.Packed {
		off += 2
	}

	switch o.baseAddrWidth() {
	case 2:
		l.BaseAddr = uint32(o.ByteOrder.Uint16(buf[off:]))
		off += 2
	case 4:
		l.BaseAddr = o.ByteOrder.Uint32(buf[off:])
		off += 4
	}

	l.NumFields = o.ByteOrder.Uint16(buf[off:])
	off += 2
	l.Status = o.ByteOrder.Uint16(buf[off:])
	off += 2
	return l, nil
}

// dirEntry is one decoded directory entry.
type dirEntry struct {
	Tag uint16
	Pos uint32
	Len uint32
}

func (o Options) encodeDirEntry(e dirEntry) []byte {
	buf := make([]byte, o.dirEntryLen())
	o.ByteOrder.PutUint16(buf[0:], e.Tag)
	off := 2
	if o.Format == FFI && !o.Packed {
		off += 2 // slack
	}
	if o.Format == ISIS {
		o.ByteOrder.PutUint16(buf[off:], uint16(e.Pos))
		off += 2
		o.ByteOrder.PutUint16(buf[off:], uint16(e.Len))
	} else {
		o.ByteOrder.PutUint32(buf[off:], e.Pos)
		off += 4
		o.ByteOrder.PutUint32(buf[off:], e.Len)
	}
	return buf
}

func (o Options) decodeDirEntry(buf []byte) dirEntry {
	var e dirEntry
	e.Tag = o.ByteOrder.Uint16(buf[0:])
	off := 2
	if o.Format == FFI && !o.Packed {
		off += 2
	}
	if o.Format == ISIS {
		e.Pos = uint32(o.ByteOrder.Uint16(buf[off:]))
		off += 2
		e.Len = uint32(o.ByteOrder.Uint16(buf[off:]))
	} else {
		e.Pos = o.ByteOrder.Uint32(buf[off:])
		off += 4
		e.Len = o.ByteOrder.Uint32(buf[off:])
	}
	return e
}
