// Package linesplit implements the ISO-only byte-stream wrapper that
// wraps/unwraps a raw record's bytes into fixed-width text lines
// terminated by a newline sequence (SPEC_FULL.md §4.6).
//
// Grounded on ccons.py's LineSplitRestreamed and streamutils.py's
// TightBufferReadOnlyBytesStreamWrapper from original_source/, adapted
// from a construct-library Subconstruct into two small io.Reader/
// io.Writer decorators. LineSplitRestreamed operates per record, not
// over the whole stream: Writer.Flush and Reader.EndRecord bracket each
// record so that its trailing newline lands right after the record's
// own bytes, whether or not that happens to fall on a lineLen boundary.
package linesplit

import (
	"bufio"
	"bytes"
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// DefaultLineLen and DefaultNewline reproduce ioisis's ISO defaults.
const (
	DefaultLineLen = 80
)

// DefaultNewline is the default end-of-line marker.
var DefaultNewline = []byte("\n")

// Reader delivers a seamless, newline-stripped byte stream from an
// underlying line-split source.
type Reader struct {
	src       *bufio.Reader
	lineLen   int
	newline   []byte
	posInLine int
	offset    int64
}

// NewReader wraps src. If lineLen <= 0, no splitting is performed and
// Reader is a transparent passthrough.
func NewReader(src io.Reader, lineLen int, newline []byte) *Reader {
	return &Reader{src: bufio.NewReader(src), lineLen: lineLen, newline: newline}
}

// Tell returns the logical (unsplit) byte offset consumed so far.
func (r *Reader) Tell() int64 { return r.offset }

func (r *Reader) Read(p []byte) (int, error) {
	if r.lineLen <= 0 {
		n, err := r.src.Read(p)
		r.offset += int64(n)
		return n, err
	}

	total := 0
	for total < len(p) {
		if r.posInLine == r.lineLen {
			if err := r.consumeNewline(); err != nil {
				return total, err
			}
			r.posInLine = 0
		}

		want := r.lineLen - r.posInLine
		if want > len(p)-total {
			want = len(p) - total
		}
		n, err := r.src.Read(p[total : total+want])
		total += n
		r.posInLine += n
		r.offset += int64(n)
		if err != nil {
			if err == io.EOF {
				if total > 0 {
					return total, nil
				}
				return total, io.EOF
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// EndRecord consumes the newline that terminates a record, wherever it
// falls within the current line. The ISO record builder always forces a
// trailing newline after each record (Writer.Flush), whether or not the
// record's length happened to land on a lineLen boundary, so a
// record-at-a-time reader must always consume exactly one newline at the
// end of a record and resume the next record at column 0. A clean EOF in
// place of the last record's newline is accepted.
func (r *Reader) EndRecord() error {
	if r.lineLen <= 0 {
		return nil
	}
	if err := r.consumeNewline(); err != nil && err != io.EOF {
		return err
	}
	r.posInLine = 0
	return nil
}

// consumeNewline reads and validates the newline marker expected at a
// line boundary. Reaching a clean EOF right at the boundary (no bytes at
// all) is not an error: it is the permitted end of a stream whose final
// line happened to land exactly on the boundary.
func (r *Reader) consumeNewline() error {
	if len(r.newline) == 0 {
		return nil
	}
	buf := make([]byte, len(r.newline))
	n, err := io.ReadFull(r.src, buf)
	if n == 0 && err == io.EOF {
		return io.EOF
	}
	if err != nil || !bytes.Equal(buf[:n], r.newline) {
		return &errs.LineSplitError{Offset: r.offset, Expected: r.newline, Got: buf[:n]}
	}
	return nil
}

// Writer inserts a newline sequence after every lineLen data bytes
// written; the final, possibly partial, line is not auto-terminated —
// call Flush to force a trailing newline unconditionally (this is what
// the ISO record builder does after writing a whole record, matching
// the historical format's unconditional trailing newline).
type Writer struct {
	dst       io.Writer
	lineLen   int
	newline   []byte
	posInLine int
	offset    int64
}

// NewWriter wraps dst. If lineLen <= 0, no splitting is performed.
func NewWriter(dst io.Writer, lineLen int, newline []byte) *Writer {
	return &Writer{dst: dst, lineLen: lineLen, newline: newline}
}

// Tell returns the logical (unsplit) byte offset written so far.
func (w *Writer) Tell() int64 { return w.offset }

func (w *Writer) Write(p []byte) (int, error) {
	if w.lineLen <= 0 {
		n, err := w.dst.Write(p)
		w.offset += int64(n)
		return n, err
	}

	total := 0
	for total < len(p) {
		room := w.lineLen - w.posInLine
		n := room
		if n > len(p)-total {
			n = len(p) - total
		}
		if n > 0 {
			if _, err := w.dst.Write(p[total : total+n]); err != nil {
				return total, err
			}
			total += n
			w.posInLine += n
			w.offset += int64(n)
		}
		if w.posInLine == w.lineLen {
			if _, err := w.dst.Write(w.newline); err != nil {
				return total, err
			}
			w.posInLine = 0
		}
	}
	return total, nil
}

// Flush unconditionally writes the newline sequence if there is any
// unterminated partial line pending.
func (w *Writer) Flush() error {
	if w.lineLen <= 0 {
		return nil
	}
	if w.posInLine > 0 {
		if _, err := w.dst.Write(w.newline); err != nil {
			return err
		}
		w.posInLine = 0
	}
	return nil
}
