// Package xrf implements the MST cross-reference file codec
// (SPEC_FULL.md §4.5): a sequence of 127-entry blocks of bit-packed
// 32-bit words mapping an MFN to the (block, offset, is_new, is_updated)
// location of its record in the master file.
//
// Grounded structurally on rpm/lead.go's fixed bit-field header decoding
// from holo-build (shift/mask arithmetic over a single packed integer),
// generalized here to the XRF entry's shift-dependent field widths.
package xrf

import (
	"encoding/binary"
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// BlockSize is the number of entries per XRF block.
const BlockSize = 127

// Options configures the XRF codec: byte order and the MSTXL shift
// shared with the accompanying master file.
type Options struct {
	ByteOrder binary.ByteOrder
	Shift     int
}

// Entry is one decoded XRF slot: the record's home block/offset and its
// new/updated flags.
type Entry struct {
	Block     int32
	Offset    uint32
	IsNew     bool
	IsUpdated bool
}

func (e Entry) isZero() bool {
	return e.Block == 0 && e.Offset == 0 && !e.IsNew && !e.IsUpdated
}

func isLittleEndian(order binary.ByteOrder) bool {
	buf := []byte{0x01, 0x00}
	return order.Uint16(buf) == 1
}

func (o Options) offsetWidth() int { return 9 - o.Shift }
func (o Options) blockWidth() int  { return 21 + o.Shift }

func (o Options) decodeEntry(word uint32) Entry {
	offsetWidth := o.offsetWidth()
	shiftAmt := offsetWidth + 2
	offsetMask := uint32(1)<<uint(offsetWidth) - 1

	isUpdated := (word>>uint(offsetWidth))&1 != 0
	isNew := (word>>uint(offsetWidth+1))&1 != 0
	block := int32(word) >> uint(shiftAmt)
	offset := (word & offsetMask) << uint(o.Shift)

	return Entry{Block: block, Offset: offset, IsNew: isNew, IsUpdated: isUpdated}
}

func (o Options) encodeEntry(e Entry) uint32 {
	offsetWidth := o.offsetWidth()
	shiftAmt := offsetWidth + 2
	blockMask := uint32(1)<<uint(o.blockWidth()) - 1
	offsetMask := uint32(1)<<uint(offsetWidth) - 1

	var word uint32
	word |= (uint32(e.Block) & blockMask) << uint(shiftAmt)
	if e.IsNew {
		word |= 1 << uint(offsetWidth+1)
	}
	if e.IsUpdated {
		word |= 1 << uint(offsetWidth)
	}
	word |= (e.Offset >> uint(o.Shift)) & offsetMask
	return word
}

func (o Options) readWord(r io.Reader) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	word := o.ByteOrder.Uint32(buf)
	if isLittleEndian(o.ByteOrder) {
		word = (word >> 16) | (word << 16)
	}
	return word, nil
}

func (o Options) writeWord(w io.Writer, word uint32) error {
	if isLittleEndian(o.ByteOrder) {
		word = (word >> 16) | (word << 16)
	}
	buf := make([]byte, 4)
	o.ByteOrder.PutUint32(buf, word)
	_, err := w.Write(buf)
	return err
}

// Decode reads the whole XRF stream and returns the 1-based MFN → Entry
// mapping, omitting all-zero entries.
func Decode(r io.Reader, opts Options) (map[int]Entry, error) {
	result := make(map[int]Entry)
	blockNum := 0
	for {
		indexWord, err := opts.readWord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &errs.UnexpectedEOF{Context: "XRF block index"}
		}
		index := int32(indexWord)
		last := index < 0
		if last {
			index = -index
		}
		blockNum++
		if int(index) != blockNum {
			return nil, errs.NewFormatError("xrf block index", "expected block %d, got %d", blockNum, index)
		}

		for i := 0; i < BlockSize; i++ {
			word, err := opts.readWord(r)
			if err != nil {
				return nil, &errs.UnexpectedEOF{Context: "XRF entry"}
			}
			entry := opts.decodeEntry(word)
			if !entry.isZero() {
				mfn := (blockNum-1)*BlockSize + i + 1
				result[mfn] = entry
			}
		}
		if last {
			break
		}
	}
	return result, nil
}

// Encode writes entries (a sparse 1-based MFN → Entry mapping) as a
// sequence of 127-entry blocks, zero-filling gaps and the final block's
// tail, and flipping the last block's leading index negative.
func Encode(w io.Writer, entries map[int]Entry, opts Options) error {
	maxMFN := 0
	for mfn := range entries {
		if mfn > maxMFN {
			maxMFN = mfn
		}
	}
	numBlocks := (maxMFN + BlockSize - 1) / BlockSize
	if numBlocks == 0 {
		numBlocks = 1
	}

	for b := 1; b <= numBlocks; b++ {
		index := int32(b)
		if b == numBlocks {
			index = -index
		}
		if err := opts.writeWord(w, uint32(index)); err != nil {
			return err
		}
		for i := 0; i < BlockSize; i++ {
			mfn := (b-1)*BlockSize + i + 1
			word := opts.encodeEntry(entries[mfn]) // zero Entry for missing MFNs
			if err := opts.writeWord(w, word); err != nil {
				return err
			}
		}
	}
	return nil
}
