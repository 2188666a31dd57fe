package mst

import (
	"encoding/hex"
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// Codec builds and parses MST records per a fixed Options value.
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

// Reader pulls MST records sequentially from a byte stream, starting
// with the leading control record.
type Reader struct {
	opts       Options
	src        io.Reader
	offset     int64
	ctrl       control
	modulus    int
	totalCount int32
	read       int32
	pendingIBP []byte // accumulated "ibp" bytes for the next record, when IBP==store
}

// NewReader reads and decodes the control record, then returns a Reader
// positioned at the first data record.
func (c *Codec) NewReader(src io.Reader) (*Reader, error) {
	buf := make([]byte, c.opts.ControlLen)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, &errs.UnexpectedEOF{Context: "MST control record"}
	}
	ctrl, err := c.opts.decodeControl(buf)
	if err != nil {
		return nil, err
	}
	shift := c.opts.Shift
	if shift == 0 {
		shift = int(ctrl.MSTXL)
	}
	modulus := c.opts.modulus(shift)
	if c.opts.ControlLen%modulus != 0 {
		return nil, errs.NewConfigurationError("mst: control_len %d is not a multiple of modulus %d", c.opts.ControlLen, modulus)
	}
	return &Reader{
		opts:       c.opts,
		src:        src,
		offset:     int64(c.opts.ControlLen),
		ctrl:       ctrl,
		modulus:    modulus,
		totalCount: ctrl.RecCnt,
	}, nil
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return buf, nil
}

// alignToBlock implements the "never split the leader" rule: if the
// leader would straddle a 512-byte block boundary, skip (and, on IBP
// check, validate) forward to the next boundary.
func (r *Reader) alignToBlock() error {
	leaderLen := r.opts.leaderLen()
	offsetInBlock := int(r.offset & 0x1FF)
	if offsetInBlock+leaderLen-4 <= blockSize {
		return nil
	}
	skip := blockSize - offsetInBlock
	pad, err := r.readN(skip)
	if err != nil {
		return &errs.UnexpectedEOF{Context: "MST block padding"}
	}
	switch r.opts.IBP {
	case IBPCheck:
		for _, b := range pad {
			if b != r.opts.BlockFiller {
				return &errs.InvalidBlockPadding{Offset: r.offset - int64(skip), Got: b}
			}
		}
	case IBPStore:
		r.pendingIBP = append(r.pendingIBP, pad...)
	case IBPIgnore:
		// bytes discarded regardless of content
	}
	return nil
}

// ReadRecord reads and parses the next record, or returns io.EOF once
// the control record's recorded count has been satisfied.
func (r *Reader) ReadRecord() (Record, error) {
	if r.read >= r.totalCount {
		return Record{}, io.EOF
	}
	if err := r.alignToBlock(); err != nil {
		return Record{}, err
	}

	leaderBuf, err := r.readN(r.opts.leaderLen())
	if err != nil {
		return Record{}, &errs.UnexpectedEOF{Context: "MST record leader"}
	}
	l, err := r.opts.decodeLeader(leaderBuf)
	if err != nil {
		return Record{}, err
	}
	if l.MFN == 0 {
		return Record{}, io.EOF
	}
	if l.OldBlock != 0 || l.OldOffset != 0 {
		return Record{}, &errs.PendingReorganization{MFN: int(l.MFN), OldBlock: l.OldBlock, OldOffset: l.OldOffset}
	}

	dirLen := int(l.NumFields) * r.opts.dirEntryLen()
	dirBuf, err := r.readN(dirLen)
	if err != nil {
		return Record{}, &errs.UnexpectedEOF{Context: "MST directory"}
	}
	entries := make([]dirEntry, l.NumFields)
	for i := range entries {
		entries[i] = r.opts.decodeDirEntry(dirBuf[i*r.opts.dirEntryLen() : (i+1)*r.opts.dirEntryLen()])
	}

	recordHeaderLen := r.opts.leaderLen() + dirLen
	if int(l.BaseAddr) < recordHeaderLen {
		return Record{}, errs.NewFormatError("mst leader", "base_addr %d is smaller than the leader+directory length %d", l.BaseAddr, recordHeaderLen)
	}
	if gap := int(l.BaseAddr) - recordHeaderLen; gap > 0 {
		if _, err := r.readN(gap); err != nil {
			return Record{}, &errs.UnexpectedEOF{Context: "MST leader/directory gap"}
		}
	}

	fieldAreaLen := 0
	for _, e := range entries {
		end := int(e.Pos) + int(e.Len)
		if end > fieldAreaLen {
			fieldAreaLen = end
		}
	}
	fieldsBuf, err := r.readN(fieldAreaLen)
	if err != nil {
		return Record{}, &errs.UnexpectedEOF{Context: "MST field area"}
	}

	fields := make([]Field, len(entries))
	for i, e := range entries {
		start, end := int(e.Pos), int(e.Pos)+int(e.Len)
		if end > len(fieldsBuf) {
			return Record{}, errs.NewFormatError("mst directory", "entry %d exceeds the field area", i)
		}
		fields[i] = Field{Tag: e.Tag, Value: append([]byte(nil), fieldsBuf[start:end]...)}
	}
	if r.opts.IBP == IBPStore && len(r.pendingIBP) > 0 && len(fields) > 0 {
		fields = append(fields, Field{Tag: IBPTag, Value: []byte(hex.EncodeToString(r.pendingIBP))})
		r.pendingIBP = nil
	}

	recordLen := int(l.BaseAddr) + fieldAreaLen
	paddedLen := recordLen
	if recordLen%r.modulus != 0 {
		paddedLen = (recordLen/r.modulus + 1) * r.modulus
	}
	if padLen := paddedLen - recordLen; padLen > 0 {
		if _, err := r.readN(padLen); err != nil {
			return Record{}, &errs.UnexpectedEOF{Context: "MST record padding"}
		}
	}
	if int(l.MFRL) != paddedLen {
		return Record{}, errs.NewFormatError("mst leader", "mfn %d: mfrl %d does not match record length %d", l.MFN, l.MFRL, paddedLen)
	}

	r.read++
	return Record{MFN: l.MFN, Status: l.Status, Fields: fields}, nil
}

// IBPTag is the synthetic tag under which IBPStore attaches
// skipped block-padding bytes to the following record. It is outside the
// 16-bit MST tag space proper (tags are user-assigned small integers) but
// is represented in the same Field type for uniform handling upstream;
// callers rendering tags for display use tagfmt with IntMode and must
// special-case this value, matching the "store" IBP policy's
// by-convention synthetic "ibp" tag described in spec.md §4.4.
const IBPTag = 0xFFFF
