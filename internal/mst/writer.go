package mst

import (
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// Writer sequentially builds MST records onto a seekable sink, rewriting
// the control record once the stream is closed.
//
// A seekable sink is required (unlike the ISO writer) because the
// control record's next-MFN/next-block/next-offset fields describe the
// *final* state of the file and can only be known after every record has
// been written; the MST builder therefore writes a placeholder control
// record first and comes back to patch it in Close, the same two-pass
// shape original_source/ioisis/mst.py's Bruma-backed writer uses at the
// Java layer.
type Writer struct {
	opts       Options
	dst        io.WriteSeeker
	offset     int64
	modulus    int
	shift      int
	nextMFN    int32
	count      int32
}

// NewWriter writes a placeholder control record and returns a Writer
// ready to accept records. shift selects the MSTXL value recorded in the
// control record (and so the padding modulus); pass 0 to use
// opts.MinModulus's implied shift of 0.
func (c *Codec) NewWriter(dst io.WriteSeeker, shift int) (*Writer, error) {
	modulus := c.opts.modulus(shift)
	if c.opts.ControlLen%modulus != 0 {
		return nil, errs.NewConfigurationError("mst: control_len %d is not a multiple of modulus %d", c.opts.ControlLen, modulus)
	}
	w := &Writer{opts: c.opts, dst: dst, offset: int64(c.opts.ControlLen), modulus: modulus, shift: shift, nextMFN: 1}
	if err := w.writeControl(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeControl() error {
	buf, err := w.opts.encodeControl(control{
		NextMFN:    w.nextMFN,
		NextBlock:  int32(1 + (w.offset >> 9)),
		NextOffset: int32(1 + (w.offset & 0x1FF)),
		MSTXL:      byte(w.shift),
		RecCnt:     w.count,
	})
	if err != nil {
		return err
	}
	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.dst.Write(buf); err != nil {
		return err
	}
	if _, err := w.dst.Seek(w.offset, io.SeekStart); err != nil {
		return err
	}
	return nil
}

// alignToBlock mirrors Reader.alignToBlock: pads with BlockFiller so that
// the next leader never straddles a 512-byte boundary.
func (w *Writer) alignToBlock() error {
	leaderLen := w.opts.leaderLen()
	offsetInBlock := int(w.offset & 0x1FF)
	if offsetInBlock+leaderLen-4 <= blockSize {
		return nil
	}
	skip := blockSize - offsetInBlock
	pad := make([]byte, skip)
	for i := range pad {
		pad[i] = w.opts.BlockFiller
	}
	if _, err := w.dst.Write(pad); err != nil {
		return err
	}
	w.offset += int64(skip)
	return nil
}

// WriteRecord assigns rec an MFN of max(w.nextMFN, rec.MFN+1)'s
// predecessor (i.e. rec.MFN if explicit and not yet used, else the next
// free MFN), builds its leader/directory/field area, pads to the
// configured modulus, and writes it out.
func (w *Writer) WriteRecord(rec Record) error {
	if err := w.alignToBlock(); err != nil {
		return err
	}

	mfn := rec.MFN
	if mfn == 0 || mfn < w.nextMFN {
		mfn = w.nextMFN
	}

	dirEntryLen := w.opts.dirEntryLen()
	dirLen := len(rec.Fields) * dirEntryLen
	headerLen := w.opts.leaderLen() + dirLen

	dir := make([]byte, 0, dirLen)
	var fieldArea []byte
	pos := 0
	for _, f := range rec.Fields {
		entry := w.opts.encodeDirEntry(dirEntry{Tag: f.Tag, Pos: uint32(pos), Len: uint32(len(f.Value))})
		dir = append(dir, entry...)
		fieldArea = append(fieldArea, f.Value...)
		pos += len(f.Value)
	}

	baseAddr := headerLen
	recordLen := baseAddr + len(fieldArea)
	paddedLen := recordLen
	if recordLen%w.modulus != 0 {
		paddedLen = (recordLen/w.modulus + 1) * w.modulus
	}

	l := leader{
		MFN:       mfn,
		MFRL:      int32(paddedLen),
		OldBlock:  0,
		OldOffset: 0,
		BaseAddr:  uint32(baseAddr),
		NumFields: uint16(len(rec.Fields)),
		Status:    rec.Status,
	}
	leaderBuf := w.opts.encodeLeader(l)

	if _, err := w.dst.Write(leaderBuf); err != nil {
		return err
	}
	if _, err := w.dst.Write(dir); err != nil {
		return err
	}
	if _, err := w.dst.Write(fieldArea); err != nil {
		return err
	}
	if padLen := paddedLen - recordLen; padLen > 0 {
		pad := make([]byte, padLen)
		for i := range pad {
			pad[i] = w.opts.RecordFiller
		}
		if _, err := w.dst.Write(pad); err != nil {
			return err
		}
	}
	w.offset += int64(paddedLen)

	w.count++
	if mfn >= w.nextMFN {
		w.nextMFN = mfn + 1
	}
	return nil
}

// Close pads to the next 512-byte boundary and rewrites the control
// record with the final next-MFN/next-block/next-offset cursor.
func (w *Writer) Close() error {
	if offsetInBlock := w.offset & 0x1FF; offsetInBlock != 0 {
		pad := make([]byte, blockSize-offsetInBlock)
		for i := range pad {
			pad[i] = w.opts.BlockFiller
		}
		if _, err := w.dst.Write(pad); err != nil {
			return err
		}
		w.offset += int64(len(pad))
	}
	return w.writeControl()
}
