package iso

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

func TestBuildParseRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	codec, err := NewCodec(opts)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	rec := NewRecord([]Field{
		{Tag: "001", Value: []byte("12345")},
		{Tag: "245", Value: []byte("A title")},
	})

	raw, err := codec.Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := codec.NewReader(bytes.NewReader(raw))
	got, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(got.Fields))
	}
	if got.Fields[0].Tag != "001" || string(got.Fields[0].Value) != "12345" {
		t.Errorf("field 0 = %+v", got.Fields[0])
	}
	if got.Fields[1].Tag != "245" || string(got.Fields[1].Value) != "A title" {
		t.Errorf("field 1 = %+v", got.Fields[1])
	}

	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReadRecordMultipleInStream(t *testing.T) {
	opts := DefaultOptions()
	codec, _ := NewCodec(opts)

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	for i := 0; i < 3; i++ {
		rec := NewRecord([]Field{{Tag: "100", Value: []byte("value")}})
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}

	r := codec.NewReader(bytes.NewReader(buf.Bytes()))
	count := 0
	for {
		_, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadRecord: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Fatalf("read %d records, want 3", count)
	}
}

func TestShortTagIsZeroPadded(t *testing.T) {
	codec, _ := NewCodec(DefaultOptions())
	rec := NewRecord([]Field{{Tag: "1", Value: []byte("x")}})
	raw, err := codec.Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := codec.NewReader(bytes.NewReader(raw))
	got, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got.Fields[0].Tag != "001" {
		t.Fatalf("Tag = %q, want 001", got.Fields[0].Tag)
	}
}

func TestTruncatedStreamIsUnexpectedEOF(t *testing.T) {
	codec, _ := NewCodec(DefaultOptions())
	rec := NewRecord([]Field{{Tag: "245", Value: []byte("A title")}})
	raw, err := codec.Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	truncated := raw[:len(raw)-3]
	r := codec.NewReader(bytes.NewReader(truncated))
	var ue *errs.UnexpectedEOF
	if _, err := r.ReadRecord(); !errors.As(err, &ue) {
		t.Fatalf("expected an UnexpectedEOF reading a truncated record, got %v", err)
	}
}

func TestEmptyStreamIsCleanEOF(t *testing.T) {
	codec, _ := NewCodec(DefaultOptions())
	r := codec.NewReader(bytes.NewReader(nil))
	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("expected io.EOF on an empty stream, got %v", err)
	}
}

func TestNoLineSplitWhenLineLenZero(t *testing.T) {
	opts := DefaultOptions()
	opts.LineLen = 0
	codec, _ := NewCodec(opts)
	rec := NewRecord([]Field{{Tag: "245", Value: bytes.Repeat([]byte("x"), 200)}})
	raw, err := codec.Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bytes.Contains(raw, []byte("\n")) {
		t.Fatalf("expected no newline when line splitting is disabled, got %q", raw)
	}
	r := codec.NewReader(bytes.NewReader(raw))
	got, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if len(got.Fields[0].Value) != 200 {
		t.Fatalf("field value length = %d, want 200", len(got.Fields[0].Value))
	}
}
