package main

import (
	"io"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// transcodingReader/Writer apply --jenc/--cenc: the JSON Lines and CSV
// formats are nominally UTF-8 but ioisis, like the original tool, lets
// the caller name any other encoding the golang.org/x/text registry
// knows (e.g. --jenc=windows-1252) for sites whose JSON/CSV tooling
// never moved off a legacy encoding.
func transcodingReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errs.NewConfigurationError("ioisis: unknown text encoding %q: %s", name, err.Error())
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func transcodingWriter(w io.Writer, name string) (io.Writer, error) {
	if name == "" || name == "utf-8" || name == "utf8" {
		return w, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errs.NewConfigurationError("ioisis: unknown text encoding %q: %s", name, err.Error())
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

// readCloser pairs a (possibly transcoding) io.Reader with the
// underlying file's io.Closer, since transform.NewReader only
// implements io.Reader.
type readCloser struct {
	io.Reader
	io.Closer
}

// writeCloser is readCloser's write-side counterpart. Close flushes a
// transform.Writer's pending bytes (if Writer is one) before closing
// the underlying file, so a stateful output encoding's final bytes are
// never silently dropped.
type writeCloser struct {
	io.Writer
	file io.Closer
}

func (w writeCloser) Close() error {
	if flusher, ok := w.Writer.(io.Closer); ok {
		if err := flusher.Close(); err != nil {
			w.file.Close()
			return err
		}
	}
	return w.file.Close()
}
