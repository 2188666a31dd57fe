// Package ioisis is a bidirectional codec library for the ISO 2709
// bibliographic record format and the CDS/ISIS MST/XRF Master File
// format, and the structured record shapes (JSON Lines, CSV) they
// convert to and from. See SPEC_FULL.md for the full specification;
// cmd/ioisis wraps this package into the ioisis CLI.
//
// The actual codecs live in the internal/ subpackages so that
// internal/recconv can freely depend on both internal/iso and
// internal/mst without an import cycle through this facade; this file
// just re-exports the handful of entry points a library caller needs.
package ioisis

import (
	"github.com/scieloorg/ioisis-go/internal/dialect"
	"github.com/scieloorg/ioisis-go/internal/hybridenc"
	"github.com/scieloorg/ioisis-go/internal/iso"
	"github.com/scieloorg/ioisis-go/internal/mst"
	"github.com/scieloorg/ioisis-go/internal/recconv"
	"github.com/scieloorg/ioisis-go/internal/subfield"
	"github.com/scieloorg/ioisis-go/internal/tagfmt"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
	"github.com/scieloorg/ioisis-go/internal/xrf"
)

// ISO 2709 types and constructors.
type (
	ISOOptions = iso.Options
	ISOField   = iso.Field
	ISORecord  = iso.Record
	ISOCodec   = iso.Codec
	ISOReader  = iso.Reader
	ISOWriter  = iso.Writer
)

var (
	DefaultISOOptions = iso.DefaultOptions
	NewISOCodec       = iso.NewCodec
	NewISORecord      = iso.NewRecord
)

// MST Master File types and constructors.
type (
	MSTOptions = mst.Options
	MSTField   = mst.Field
	MSTRecord  = mst.Record
	MSTCodec   = mst.Codec
	MSTReader  = mst.Reader
	MSTWriter  = mst.Writer
	MSTFormat  = mst.Format
)

const (
	MSTFormatISIS = mst.ISIS
	MSTFormatFFI  = mst.FFI
)

var (
	DefaultMSTOptions = mst.DefaultOptions
	NewMSTCodec       = mst.NewCodec
)

// XRF cross-reference file types and functions.
type (
	XRFOptions = xrf.Options
	XRFEntry   = xrf.Entry
)

var (
	DecodeXRF = xrf.Decode
	EncodeXRF = xrf.Encode
)

// Subfield parsing.
type (
	SubfieldConfig = subfield.Config
	SubfieldPair   = subfield.Pair
	SubfieldParser = subfield.Parser
)

var (
	NewSubfieldConfig = subfield.NewConfig
	NewSubfieldParser = subfield.New
)

// Field-tag format templates.
type (
	TagFormatTemplate = tagfmt.Template
	TagFormatMode     = tagfmt.Mode
)

const (
	TagFormatStringMode = tagfmt.StringMode
	TagFormatIntMode    = tagfmt.IntMode
)

var CompileTagFormat = tagfmt.Compile

// Tidy list / structured record conversions.
type (
	TidyRecord = tidylist.Record
	TidyEntry  = tidylist.Entry
	TidyRow    = tidylist.TidyRow
	STidyRow   = tidylist.STidyRow
)

var DecodeTidyList = tidylist.Decode

// Raw-record/tidy-list bridging and the hybrid legacy/UTF-8 decoder.
type (
	RecordCodec    = recconv.Codec
	HybridDecoder  = hybridenc.Decoder
	MSTDialect     = dialect.Preset
)

var (
	UTF8RecordCodec   = recconv.UTF8Codec
	HybridRecordCodec = recconv.HybridCodec
	NewHybridDecoder  = hybridenc.NewDecoder
	ISOToTidy         = recconv.ISOToTidy
	TidyToISO         = recconv.TidyToISO
	MSTToTidy         = recconv.MSTToTidy
	TidyToMST         = recconv.TidyToMST
	BuiltinDialects   = dialect.Builtin
	LookupDialect     = dialect.Lookup
)
