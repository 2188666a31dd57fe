// Command ioisis is the ioisis multi-command CLI: ISO 2709 and MST
// master files convert to and from JSON Lines and CSV through the
// shared tidylist.Record intermediate, per SPEC_FULL.md §6.1.
package main

import (
	"io"

	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// recordSource yields tidylist.Record values one at a time, returning
// io.EOF once the underlying stream is exhausted.
type recordSource interface {
	Next() (tidylist.Record, error)
	Close() error
}

// recordSink consumes tidylist.Record values in order.
type recordSink interface {
	Write(tidylist.Record) error
	Close() error
}

// runPipeline drains src into dst, record by record, never materializing
// more than one record at a time (the streaming discipline spec.md §5
// requires of both the parsers and the builders).
func runPipeline(src recordSource, dst recordSink) error {
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := dst.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
