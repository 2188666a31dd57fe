package linesplit

import (
	"bytes"
	"io"
	"testing"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

func TestWriteReadRoundTrip(t *testing.T) {
	data := []byte("0123456789abcdefghij")
	var buf bytes.Buffer
	w := NewWriter(&buf, 8, DefaultNewline)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "01234567\n89abcdef\nghij\n"
	if buf.String() != want {
		t.Fatalf("wrote %q, want %q", buf.String(), want)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()), 8, DefaultNewline)
	got := make([]byte, len(data))
	if _, err := io.ReadFull(r, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip = %q, want %q", got, data)
	}
}

func TestFlushNoopOnExactMultiple(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 4, DefaultNewline)
	if _, err := w.Write([]byte("abcd")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.String() != "abcd\n" {
		t.Fatalf("got %q, want %q", buf.String(), "abcd\n")
	}
	// A second Flush with nothing pending must not add another newline.
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.String() != "abcd\n" {
		t.Fatalf("second Flush changed output to %q", buf.String())
	}
}

func TestReadCleanEOFAtBoundary(t *testing.T) {
	// Exactly one full line, no trailing newline at all: reading it back
	// fully must succeed and then report a clean EOF.
	r := NewReader(bytes.NewReader([]byte("abcd")), 4, DefaultNewline)
	got := make([]byte, 4)
	n, err := r.Read(got)
	if err != nil || n != 4 {
		t.Fatalf("Read = (%d, %v), want (4, nil)", n, err)
	}
	n2, err := r.Read(make([]byte, 1))
	if n2 != 0 || err != io.EOF {
		t.Fatalf("second Read = (%d, %v), want (0, io.EOF)", n2, err)
	}
}

func TestReadRejectsCorruptNewline(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("abcdXXXXefgh\n")), 4, DefaultNewline)
	got := make([]byte, 8)
	if _, err := io.ReadFull(r, got); err == nil {
		t.Fatal("expected a LineSplitError for a corrupted newline marker")
	} else if _, ok := err.(*errs.LineSplitError); !ok {
		t.Fatalf("expected a LineSplitError, got %v", err)
	}
}

func TestNoSplitWhenLineLenZero(t *testing.T) {
	data := []byte("no splitting applied here at all")
	var buf bytes.Buffer
	w := NewWriter(&buf, 0, DefaultNewline)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatalf("got %q, want passthrough %q", buf.Bytes(), data)
	}
}
