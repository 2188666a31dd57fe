package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/subfield"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// CSV is inherently flat, so unlike JSON Lines it only ever carries the
// two row-oriented modes (tidy/stidy): one physical CSV row per field
// or per subfield, spanning potentially many records per file. Since a
// record may carry neither an mfn (plain ISO input) nor a status (ISO
// has none), every CSV file additionally carries a synthetic, always-
// present "rec" column — a 0-based sequential record counter — so a
// reader can always tell where one record ends and the next begins,
// which the optional "mfn" column alone cannot guarantee.
var csvTidyHeader = []string{"rec", "mfn", "active", "index", "tag", "data"}
var csvSTidyHeader = []string{"rec", "mfn", "active", "index", "tag", "sindex", "sub", "data"}

type csvSink struct {
	w      *csv.Writer
	closer io.Closer
	cmode  string
	sp     *subfield.Parser
	rec    int
	header bool
}

func newCSVSink(w io.WriteCloser, cmode string, sp *subfield.Parser) *csvSink {
	return &csvSink{w: csv.NewWriter(w), closer: w, cmode: cmode, sp: sp}
}

func (s *csvSink) writeHeader() error {
	if s.header {
		return nil
	}
	s.header = true
	header := csvTidyHeader
	if s.cmode == "stidy" {
		header = csvSTidyHeader
	}
	return s.w.Write(header)
}

func boolStr(has, v bool) string {
	if !has {
		return ""
	}
	if v {
		return "true"
	}
	return "false"
}

func intStr(has bool, n int) string {
	if !has {
		return ""
	}
	return strconv.Itoa(n)
}

func (s *csvSink) Write(rec tidylist.Record) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	recNo := strconv.Itoa(s.rec)
	s.rec++
	mfn, active := intStr(rec.HasMFN, rec.MFN), boolStr(rec.HasStatus, rec.Active)

	switch s.cmode {
	case "tidy":
		for _, row := range rec.TidyRows() {
			if err := s.w.Write([]string{recNo, mfn, active, strconv.Itoa(row.Index), row.Tag, row.Data}); err != nil {
				return err
			}
		}
	case "stidy":
		for _, row := range rec.STidyRows(s.sp) {
			if err := s.w.Write([]string{recNo, mfn, active, strconv.Itoa(row.Index), row.Tag, strconv.Itoa(row.SIndex), row.Sub, row.Data}); err != nil {
				return err
			}
		}
	default:
		return errs.NewConfigurationError("ioisis: csv only supports cmode tidy/stidy, got %q", s.cmode)
	}
	return nil
}

func (s *csvSink) Close() error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.closer.Close()
}

type csvSource struct {
	r       *csv.Reader
	closer  io.Closer
	cmode   string
	sp      *subfield.Parser
	pending []string
	atEOF   bool
}

func newCSVSource(r io.ReadCloser, cmode string, sp *subfield.Parser) (*csvSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return &csvSource{r: cr, closer: r, cmode: cmode, sp: sp, atEOF: true}, nil
	}
	if err != nil {
		return nil, err
	}
	want := csvTidyHeader
	if cmode == "stidy" {
		want = csvSTidyHeader
	}
	if len(header) != len(want) {
		return nil, errs.NewFormatError("csv", "unexpected header %v, want %v", header, want)
	}
	return &csvSource{r: cr, closer: r, cmode: cmode, sp: sp}, nil
}

func (s *csvSource) readRow() ([]string, error) {
	if s.pending != nil {
		row := s.pending
		s.pending = nil
		return row, nil
	}
	return s.r.Read()
}

func (s *csvSource) Next() (tidylist.Record, error) {
	if s.atEOF {
		return tidylist.Record{}, io.EOF
	}
	first, err := s.readRow()
	if err == io.EOF {
		s.atEOF = true
		return tidylist.Record{}, io.EOF
	}
	if err != nil {
		return tidylist.Record{}, err
	}

	switch s.cmode {
	case "tidy":
		var rows []tidylist.TidyRow
		rows = append(rows, mustTidyRow(first))
		for {
			row, err := s.r.Read()
			if err == io.EOF {
				s.atEOF = true
				break
			}
			if err != nil {
				return tidylist.Record{}, err
			}
			if row[0] != first[0] {
				s.pending = row
				break
			}
			rows = append(rows, mustTidyRow(row))
		}
		rec := tidylist.FromTidyRows(rows)
		return applyMFNStatus(rec, first), nil
	case "stidy":
		var rows []tidylist.STidyRow
		rows = append(rows, mustSTidyRow(first))
		for {
			row, err := s.r.Read()
			if err == io.EOF {
				s.atEOF = true
				break
			}
			if err != nil {
				return tidylist.Record{}, err
			}
			if row[0] != first[0] {
				s.pending = row
				break
			}
			rows = append(rows, mustSTidyRow(row))
		}
		rec, err := tidylist.FromSTidyRows(rows, s.sp)
		if err != nil {
			return tidylist.Record{}, err
		}
		return applyMFNStatus(rec, first), nil
	default:
		return tidylist.Record{}, errs.NewConfigurationError("ioisis: csv only supports cmode tidy/stidy, got %q", s.cmode)
	}
}

func (s *csvSource) Close() error { return s.closer.Close() }

func mustTidyRow(row []string) tidylist.TidyRow {
	idx, _ := strconv.Atoi(row[3])
	return tidylist.TidyRow{Index: idx, Tag: row[4], Data: row[5]}
}

func mustSTidyRow(row []string) tidylist.STidyRow {
	idx, _ := strconv.Atoi(row[3])
	sidx, _ := strconv.Atoi(row[5])
	return tidylist.STidyRow{Index: idx, Tag: row[4], SIndex: sidx, Sub: row[6], Data: row[7]}
}

// applyMFNStatus restores the rec-level mfn/active columns onto rec,
// since FromTidyRows/FromSTidyRows only reconstruct per-row mfn values.
func applyMFNStatus(rec tidylist.Record, first []string) tidylist.Record {
	if first[1] != "" {
		n, _ := strconv.Atoi(first[1])
		rec.MFN, rec.HasMFN = n, true
	}
	if first[2] != "" {
		rec.Active, rec.HasStatus = first[2] == "true", true
	}
	return rec
}
