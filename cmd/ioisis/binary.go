package main

import (
	"io"
	"os"

	"github.com/scieloorg/ioisis-go/internal/iso"
	"github.com/scieloorg/ioisis-go/internal/mst"
	"github.com/scieloorg/ioisis-go/internal/recconv"
	"github.com/scieloorg/ioisis-go/internal/tagfmt"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// isoSource reads ISO 2709 records and converts each to a tidylist
// Record, optionally prepending a synthetic sequential mfn (ISO records
// carry no intrinsic one).
type isoSource struct {
	r       *iso.Reader
	closer  io.Closer
	ftf     *tagfmt.Template
	codec   recconv.Codec
	withMFN bool
	nextMFN int
}

func newISOSource(rc io.ReadCloser, opts iso.Options, ftf *tagfmt.Template, codec recconv.Codec, withMFN bool) (*isoSource, error) {
	c, err := iso.NewCodec(opts)
	if err != nil {
		return nil, err
	}
	return &isoSource{r: c.NewReader(rc), closer: rc, ftf: ftf, codec: codec, withMFN: withMFN, nextMFN: 1}, nil
}

func (s *isoSource) Next() (tidylist.Record, error) {
	rec, err := s.r.ReadRecord()
	if err != nil {
		return tidylist.Record{}, err
	}
	mfn := s.nextMFN
	s.nextMFN++
	return recconv.ISOToTidy(rec, s.ftf, s.codec, mfn, s.withMFN)
}

func (s *isoSource) Close() error { return s.closer.Close() }

// isoSink converts each tidylist.Record back into ISO 2709 and writes it.
type isoSink struct {
	w      *iso.Writer
	closer io.Closer
	ftf    *tagfmt.Template
	codec  recconv.Codec
}

func newISOSink(wc io.WriteCloser, opts iso.Options, ftf *tagfmt.Template, codec recconv.Codec) (*isoSink, error) {
	c, err := iso.NewCodec(opts)
	if err != nil {
		return nil, err
	}
	return &isoSink{w: c.NewWriter(wc), closer: wc, ftf: ftf, codec: codec}, nil
}

func (s *isoSink) Write(rec tidylist.Record) error {
	r, err := recconv.TidyToISO(rec, s.ftf, s.codec)
	if err != nil {
		return err
	}
	return s.w.WriteRecord(r)
}

func (s *isoSink) Close() error { return s.closer.Close() }

// mstSource reads MST records and converts each to a tidylist Record,
// optionally skipping logically deleted ones (status != 0) unless --all.
type mstSource struct {
	r          *mst.Reader
	closer     io.Closer
	ftf        *tagfmt.Template
	codec      recconv.Codec
	onlyActive bool
}

func newMSTSource(rc io.ReadCloser, opts mst.Options, ftf *tagfmt.Template, codec recconv.Codec, onlyActive bool) (*mstSource, error) {
	c, err := mst.NewCodec(opts)
	if err != nil {
		return nil, err
	}
	r, err := c.NewReader(rc)
	if err != nil {
		return nil, err
	}
	return &mstSource{r: r, closer: rc, ftf: ftf, codec: codec, onlyActive: onlyActive}, nil
}

func (s *mstSource) Next() (tidylist.Record, error) {
	for {
		rec, err := s.r.ReadRecord()
		if err != nil {
			return tidylist.Record{}, err
		}
		if s.onlyActive && rec.Status != 0 {
			continue
		}
		return recconv.MSTToTidy(rec, s.ftf, s.codec)
	}
}

func (s *mstSource) Close() error { return s.closer.Close() }

// mstSink converts each tidylist.Record back into an MST record and
// writes it; Close rewrites the control record via mst.Writer.Close.
type mstSink struct {
	w     *mst.Writer
	file  *os.File
	ftf   *tagfmt.Template
	codec recconv.Codec
}

func newMSTSink(f *os.File, opts mst.Options, ftf *tagfmt.Template, codec recconv.Codec, shift int) (*mstSink, error) {
	c, err := mst.NewCodec(opts)
	if err != nil {
		return nil, err
	}
	w, err := c.NewWriter(f, shift)
	if err != nil {
		return nil, err
	}
	return &mstSink{w: w, file: f, ftf: ftf, codec: codec}, nil
}

func (s *mstSink) Write(rec tidylist.Record) error {
	r, err := recconv.TidyToMST(rec, s.ftf, s.codec)
	if err != nil {
		return err
	}
	return s.w.WriteRecord(r)
}

func (s *mstSink) Close() error {
	if err := s.w.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
