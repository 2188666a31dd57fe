// Package iso implements the ISO 2709 record codec (SPEC_FULL.md §4.3): a
// variable-length, self-describing record with a fixed-width leader, a
// directory of tag/length/position triples, and concatenated field data,
// optionally wrapped in fixed-width text lines.
//
// Grounded on original_source/ioisis/iso.py's construct-based grammar,
// reimplemented per the hand-written-grammar design note in spec.md §9:
// one function per structural layer (leader, directory, field area)
// taking a byte cursor and returning the parsed value plus the new
// cursor, and on the rpm.Header/HeaderIndexRecord directory-of-entries
// shape from holo-build's rpm/header.go (a directory array of
// tag/offset/length triples over a concatenated data blob is exactly
// this format's directory+field-area split).
package iso

import (
	"bytes"
	"fmt"
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/linesplit"
)

// Layout constants, byte-exact per SPEC_FULL.md §4.3.
const (
	TotalLenLen = 5
	LeaderLen   = TotalLenLen + 19
	TagLen      = 3

	DefaultLenLen    = 4
	DefaultPosLen    = 5
	DefaultCustomLen = 0
)

// DefaultFieldTerminator and DefaultRecordTerminator reproduce ioisis's
// historical ISO defaults.
var (
	DefaultFieldTerminator  = []byte("#")
	DefaultRecordTerminator = []byte("#")
)

// Options configures the ISO codec: the two terminator bytes, the
// directory entry widths, and the line-split parameters.
type Options struct {
	FieldTerminator  []byte
	RecordTerminator []byte
	LenLen           int
	PosLen           int
	CustomLen        int
	LineLen          int // 0 disables line splitting
	Newline          []byte
}

// DefaultOptions returns ioisis's historical ISO defaults.
func DefaultOptions() Options {
	return Options{
		FieldTerminator:  append([]byte(nil), DefaultFieldTerminator...),
		RecordTerminator: append([]byte(nil), DefaultRecordTerminator...),
		LenLen:           DefaultLenLen,
		PosLen:           DefaultPosLen,
		CustomLen:        DefaultCustomLen,
		LineLen:          linesplit.DefaultLineLen,
		Newline:          append([]byte(nil), linesplit.DefaultNewline...),
	}
}

func (o Options) entryLen() int { return TagLen + o.LenLen + o.PosLen + o.CustomLen }

func (o Options) validate() error {
	if o.LenLen < 1 || o.LenLen > 9 {
		return errs.NewConfigurationError("iso: len_len must be between 1 and 9, got %d", o.LenLen)
	}
	if o.PosLen < 1 || o.PosLen > 9 {
		return errs.NewConfigurationError("iso: pos_len must be between 1 and 9, got %d", o.PosLen)
	}
	if o.CustomLen < 0 {
		return errs.NewConfigurationError("iso: custom_len must not be negative")
	}
	if len(o.FieldTerminator) == 0 {
		return errs.NewConfigurationError("iso: field terminator must not be empty")
	}
	if len(o.RecordTerminator) == 0 {
		return errs.NewConfigurationError("iso: record terminator must not be empty")
	}
	return nil
}

// Field is one (tag, value) entry in a record's field area.
type Field struct {
	Tag   string // raw 3-char ASCII tag, e.g. "001"
	Value []byte
}

// Record is a fully parsed/buildable ISO 2709 record.
type Record struct {
	Status          byte
	Type            byte
	Custom2         [2]byte
	Coding          byte
	IndicatorCount  int
	IdentifierLen   int
	Custom3         [3]byte
	Reserved        byte
	Fields          []Field
}

// defaults for the leader's mostly-unused bookkeeping bytes.
func newRecordDefaults() Record {
	return Record{
		Status:         '0',
		Type:           '0',
		Custom2:        [2]byte{'0', '0'},
		Coding:         '0',
		Custom3:        [3]byte{'0', '0', '0'},
		Reserved:       '0',
	}
}

// NewRecord builds a Record with the historical byte defaults and the
// given fields.
func NewRecord(fields []Field) Record {
	r := newRecordDefaults()
	r.Fields = fields
	return r
}

// Codec builds and parses ISO 2709 records per a fixed Options value.
type Codec struct {
	opts Options
}

// NewCodec validates opts and returns a ready-to-use Codec.
func NewCodec(opts Options) (*Codec, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Codec{opts: opts}, nil
}

func asciiDigits(n, width int) ([]byte, error) {
	s := fmt.Sprintf("%0*d", width, n)
	if len(s) != width {
		return nil, errs.NewFormatError("iso leader", "value %d does not fit in %d ASCII digits", n, width)
	}
	return []byte(s), nil
}

func parseASCIIDigits(b []byte) (int, error) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errs.NewFormatError("iso leader", "expected ASCII digits, got %q", b)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// Build encodes rec into its ISO 2709 byte representation, optionally
// line-split per Options.LineLen/Newline.
func (c *Codec) Build(rec Record) ([]byte, error) {
	ft := c.opts.FieldTerminator
	rt := c.opts.RecordTerminator

	// Field area + directory, built together so that directory
	// positions are the running prefix sum of preceding field lengths.
	var fieldsArea bytes.Buffer
	var dir bytes.Buffer
	pos := 0
	for _, f := range rec.Fields {
		tag, err := normalizeTag(f.Tag)
		if err != nil {
			return nil, err
		}
		dir.Write(tag)
		entryLen := len(f.Value) + len(ft)
		lenBytes, err := asciiDigits(entryLen, c.opts.LenLen)
		if err != nil {
			return nil, err
		}
		posBytes, err := asciiDigits(pos, c.opts.PosLen)
		if err != nil {
			return nil, err
		}
		dir.Write(lenBytes)
		dir.Write(posBytes)
		if c.opts.CustomLen > 0 {
			dir.Write(bytes.Repeat([]byte("0"), c.opts.CustomLen))
		}

		fieldsArea.Write(f.Value)
		fieldsArea.Write(ft)
		pos += entryLen
	}
	dir.Write(ft) // directory terminator

	baseAddr := LeaderLen + dir.Len()
	baseAddrBytes, err := asciiDigits(baseAddr, TotalLenLen)
	if err != nil {
		return nil, err
	}

	var leader bytes.Buffer
	leader.WriteByte(rec.Status)
	leader.WriteByte(rec.Type)
	leader.Write(rec.Custom2[:])
	leader.WriteByte(rec.Coding)
	ic, err := asciiDigits(rec.IndicatorCount, 1)
	if err != nil {
		return nil, err
	}
	leader.Write(ic)
	idl, err := asciiDigits(rec.IdentifierLen, 1)
	if err != nil {
		return nil, err
	}
	leader.Write(idl)
	leader.Write(baseAddrBytes)
	leader.Write(rec.Custom3[:])
	lenLenDigit, _ := asciiDigits(c.opts.LenLen, 1)
	posLenDigit, _ := asciiDigits(c.opts.PosLen, 1)
	customLenDigit, _ := asciiDigits(c.opts.CustomLen, 1)
	leader.Write(lenLenDigit)
	leader.Write(posLenDigit)
	leader.Write(customLenDigit)
	leader.WriteByte(rec.Reserved)

	var prefixless bytes.Buffer
	prefixless.Write(leader.Bytes())
	prefixless.Write(dir.Bytes())
	prefixless.Write(fieldsArea.Bytes())
	prefixless.Write(rt)

	totalLen := TotalLenLen + prefixless.Len()
	totalLenBytes, err := asciiDigits(totalLen, TotalLenLen)
	if err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	raw.Write(totalLenBytes)
	raw.Write(prefixless.Bytes())

	if c.opts.LineLen <= 0 {
		return raw.Bytes(), nil
	}
	var out bytes.Buffer
	w := linesplit.NewWriter(&out, c.opts.LineLen, c.opts.Newline)
	if _, err := w.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// normalizeTag returns the tag as exactly TagLen bytes: left-padded with
// '0' when shorter (the canonical zero-padded numeric form). A tag longer
// than TagLen is rejected with a FormatError.
func normalizeTag(tag string) ([]byte, error) {
	if len(tag) == TagLen {
		return []byte(tag), nil
	}
	if len(tag) > TagLen {
		return nil, errs.NewFormatError("iso directory", "tag %q is longer than %d characters", tag, TagLen)
	}
	out := make([]byte, TagLen)
	pad := TagLen - len(tag)
	for i := 0; i < pad; i++ {
		out[i] = '0'
	}
	copy(out[pad:], tag)
	return out, nil
}

// Reader pulls ISO 2709 records sequentially from a byte stream.
type Reader struct {
	opts Options
	src  *linesplit.Reader
}

// NewReader wraps src for sequential record-at-a-time reading.
func (c *Codec) NewReader(src io.Reader) *Reader {
	return &Reader{opts: c.opts, src: linesplit.NewReader(src, c.opts.LineLen, c.opts.Newline)}
}

// ReadRecord reads and parses the next record, or returns io.EOF at a
// clean record boundary.
func (r *Reader) ReadRecord() (Record, error) {
	totalLenBytes := make([]byte, TotalLenLen)
	n, err := io.ReadFull(r.src, totalLenBytes)
	if n == 0 && err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, &errs.UnexpectedEOF{Context: "ISO record total_len"}
	}
	totalLen, err := parseASCIIDigits(totalLenBytes)
	if err != nil {
		return Record{}, err
	}
	if totalLen < TotalLenLen {
		return Record{}, errs.NewFormatError("iso record", "total_len %d is smaller than the leader prefix", totalLen)
	}
	body := make([]byte, totalLen-TotalLenLen)
	if _, err := io.ReadFull(r.src, body); err != nil {
		return Record{}, &errs.UnexpectedEOF{Context: "ISO record body"}
	}
	if err := r.src.EndRecord(); err != nil {
		return Record{}, err
	}
	return parseBody(r.opts, totalLen, body)
}

func parseBody(opts Options, totalLen int, body []byte) (Record, error) {
	const leaderBodyLen = LeaderLen - TotalLenLen // 19
	if len(body) < leaderBodyLen {
		return Record{}, errs.NewFormatError("iso leader", "record body shorter than the leader")
	}

	rec := Record{
		Status:  body[0],
		Type:    body[1],
		Coding:  body[4],
	}
	copy(rec.Custom2[:], body[2:4])
	indicatorCount, err := parseASCIIDigits(body[5:6])
	if err != nil {
		return Record{}, err
	}
	identifierLen, err := parseASCIIDigits(body[6:7])
	if err != nil {
		return Record{}, err
	}
	baseAddr, err := parseASCIIDigits(body[7:12])
	if err != nil {
		return Record{}, err
	}
	copy(rec.Custom3[:], body[12:15])
	lenLen, err := parseASCIIDigits(body[15:16])
	if err != nil {
		return Record{}, err
	}
	posLen, err := parseASCIIDigits(body[16:17])
	if err != nil {
		return Record{}, err
	}
	customLen, err := parseASCIIDigits(body[17:18])
	if err != nil {
		return Record{}, err
	}
	rec.Reserved = body[18]
	rec.IndicatorCount = indicatorCount
	rec.IdentifierLen = identifierLen

	ft := opts.FieldTerminator
	entryLen := TagLen + lenLen + posLen + customLen
	dirAreaLen := baseAddr - LeaderLen - len(ft)
	if entryLen <= 0 || dirAreaLen < 0 || dirAreaLen%entryLen != 0 {
		return Record{}, errs.NewFormatError("iso directory", "base_addr %d is inconsistent with entry width %d", baseAddr, entryLen)
	}
	numFields := dirAreaLen / entryLen

	dirStart := leaderBodyLen
	if dirStart+dirAreaLen+len(ft) > len(body) {
		return Record{}, &errs.UnexpectedEOF{Context: "ISO directory"}
	}

	type dirEntry struct {
		tag      string
		length   int
		position int
	}
	entries := make([]dirEntry, numFields)
	off := dirStart
	for i := 0; i < numFields; i++ {
		tag := string(body[off : off+TagLen])
		off += TagLen
		length, err := parseASCIIDigits(body[off : off+lenLen])
		if err != nil {
			return Record{}, err
		}
		off += lenLen
		position, err := parseASCIIDigits(body[off : off+posLen])
		if err != nil {
			return Record{}, err
		}
		off += posLen
		off += customLen // custom bytes are not semantically interpreted
		entries[i] = dirEntry{tag: tag, length: length, position: position}
	}

	if !bytes.Equal(body[off:off+len(ft)], ft) {
		return Record{}, errs.NewFormatError("iso directory", "missing directory terminator")
	}
	off += len(ft)

	if off+TotalLenLen != baseAddr {
		return Record{}, errs.NewFormatError("iso leader", "base_addr %d does not match computed cursor %d", baseAddr, off+TotalLenLen)
	}

	for i := 0; i < numFields; i++ {
		expectedPos := 0
		if i > 0 {
			expectedPos = entries[i-1].position + entries[i-1].length
		}
		if entries[i].position != expectedPos {
			return Record{}, errs.NewFormatError("iso directory", "entry %d position %d does not follow the running prefix sum", i, entries[i].position)
		}
	}

	fieldsAreaStart := baseAddr - TotalLenLen
	fields := make([]Field, numFields)
	for i, e := range entries {
		start := fieldsAreaStart + e.position
		end := start + e.length
		if end > len(body) || e.length < len(ft) {
			return Record{}, &errs.UnexpectedEOF{Context: "ISO field data"}
		}
		valueEnd := end - len(ft)
		if !bytes.Equal(body[valueEnd:end], ft) {
			return Record{}, errs.NewFormatError("iso field", "field %d is missing its field terminator", i)
		}
		fields[i] = Field{Tag: e.tag, Value: append([]byte(nil), body[start:valueEnd]...)}
	}

	fieldsAreaEnd := fieldsAreaStart
	if numFields > 0 {
		last := entries[numFields-1]
		fieldsAreaEnd = fieldsAreaStart + last.position + last.length
	}
	rt := opts.RecordTerminator
	if fieldsAreaEnd+len(rt) != len(body) {
		return Record{}, errs.NewFormatError("iso record", "unexpected trailing data or truncation after field area")
	}
	if !bytes.Equal(body[fieldsAreaEnd:], rt) {
		return Record{}, errs.NewFormatError("iso record", "missing record terminator")
	}

	rec.Fields = fields
	return rec, nil
}

// Writer sequentially builds ISO 2709 records onto a byte sink.
type Writer struct {
	codec *Codec
	dst   io.Writer
}

// NewWriter returns a Writer that encodes each record with Build and
// writes the result to dst.
func (c *Codec) NewWriter(dst io.Writer) *Writer {
	return &Writer{codec: c, dst: dst}
}

// WriteRecord builds and writes a single record.
func (w *Writer) WriteRecord(rec Record) error {
	raw, err := w.codec.Build(rec)
	if err != nil {
		return err
	}
	_, err = w.dst.Write(raw)
	return err
}
