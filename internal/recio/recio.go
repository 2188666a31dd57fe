// Package recio provides the sink/source helpers shared by every
// cmd/ioisis subcommand: stdin/stdout passthroughs for the textual
// (ISO/JSONL/CSV) formats, and an mmap-backed reader for MST input,
// since decoding an MST file benefits from random page-cache-backed
// access while the ISO/JSONL/CSV side is purely sequential.
//
// Grounded on saferwall-pe's use of edsrzf/mmap-go to map PE binaries
// read-only for parsing (pe/pe.go opens the target file and maps it
// once up front rather than issuing many small reads); the MST reader
// here is handed the resulting byte slice through a bytes.Reader so the
// rest of internal/mst stays a plain io.Reader consumer.
package recio

import (
	"bytes"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// mmapReadCloser adapts an mmap.MMap-backed byte slice into an
// io.ReadCloser that unmaps and closes the underlying file once done.
type mmapReadCloser struct {
	*bytes.Reader
	region mmap.MMap
	file   *os.File
}

func (m *mmapReadCloser) Close() error {
	unmapErr := m.region.Unmap()
	closeErr := m.file.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

// OpenMSTInput opens path for MST decoding. Regular, non-empty files are
// memory-mapped read-only; "-" (stdin), pipes, and empty files fall back
// to plain buffered reads.
func OpenMSTInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return f, nil
	}
	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return f, nil // mmap is an optimization; fall back to the open file
	}
	return &mmapReadCloser{Reader: bytes.NewReader(region), region: region, file: f}, nil
}

// CreateMSTOutput opens path for MST encoding. Unlike the textual
// formats, the MST writer needs Seek to rewrite the control record after
// the last record is known, so "-" (stdout) is rejected outright rather
// than silently losing that rewrite.
func CreateMSTOutput(path string) (*os.File, error) {
	if path == "-" {
		return nil, errMSTOutputNeedsSeek
	}
	return os.Create(path)
}

var errMSTOutputNeedsSeek = mstOutputNeedsSeekError{}

type mstOutputNeedsSeekError struct{}

func (mstOutputNeedsSeekError) Error() string {
	return "ioisis: MST output must be a regular file (not \"-\"); the control record rewrite requires Seek"
}

// OpenTextInput opens path for sequential ISO/JSONL/CSV reading; "-"
// means stdin.
func OpenTextInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// OpenTextOutput opens path for sequential ISO/JSONL/CSV writing; "-"
// means stdout.
func OpenTextOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
