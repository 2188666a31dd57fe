package main

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/subfield"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// jsonlSource reads one structured record per line, per DESIGN.md's
// JSON Lines row shapes: field/pairs/nest/inest lines are JSON objects, tidy/stidy lines
// are JSON arrays of that one record's rows.
type jsonlSource struct {
	sc     *bufio.Scanner
	closer io.Closer
	mode   string
	sp     *subfield.Parser
}

func newJSONLSource(r io.ReadCloser, mode string, sp *subfield.Parser) *jsonlSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &jsonlSource{sc: sc, closer: r, mode: mode, sp: sp}
}

func (s *jsonlSource) Next() (tidylist.Record, error) {
	for s.sc.Scan() {
		line := s.sc.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		return structuredDecode(s.mode, append(json.RawMessage(nil), line...), s.sp)
	}
	if err := s.sc.Err(); err != nil {
		return tidylist.Record{}, err
	}
	return tidylist.Record{}, io.EOF
}

func (s *jsonlSource) Close() error { return s.closer.Close() }

// jsonlSink writes one JSON value per line.
type jsonlSink struct {
	w      io.Writer
	closer io.Closer
	enc    *json.Encoder
	mode   string
	sp     *subfield.Parser
}

func newJSONLSink(w io.WriteCloser, mode string, sp *subfield.Parser) *jsonlSink {
	return &jsonlSink{w: w, closer: w, enc: json.NewEncoder(w), mode: mode, sp: sp}
}

func (s *jsonlSink) Write(rec tidylist.Record) error {
	v, err := structuredEncode(s.mode, rec, s.sp)
	if err != nil {
		return err
	}
	if err := s.enc.Encode(v); err != nil {
		return errs.NewFormatError("json", "cannot encode record: %s", err.Error())
	}
	return nil
}

func (s *jsonlSink) Close() error { return s.closer.Close() }

func bytesTrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
