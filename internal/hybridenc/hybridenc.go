// Package hybridenc implements the hybrid UTF-8/legacy-encoding decoder
// described in SPEC_FULL.md §4.8: MST/ISO payloads are nominally a
// single-byte legacy encoding (cp1252 by default) but may carry embedded
// well-formed multi-byte UTF-8 runs (common in records produced by
// newer, UTF-8-aware tooling against an older legacy-encoded base).
//
// The RFC 3629 multi-byte validity check (excluding the surrogate range
// and overlong encodings) is implemented as a direct byte scan rather
// than the regex the original Python tool uses, for the same reason
// internal/subfield scans by hand: Go's RE2 engine matches runes, not
// raw \x80-\xBF byte ranges, against arbitrary (possibly
// invalid-as-UTF-8) byte strings, so a hand-written scanner is the
// faithful port here.
package hybridenc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// DefaultLegacy is ioisis's historical fallback encoding.
func DefaultLegacy() encoding.Encoding { return charmap.Windows1252 }

// Decoder decodes bytes that are mostly Legacy-encoded but may contain
// embedded well-formed multi-byte UTF-8 sequences.
type Decoder struct {
	Legacy encoding.Encoding
}

// NewDecoder returns a Decoder falling back to legacy. A nil legacy uses
// DefaultLegacy.
func NewDecoder(legacy encoding.Encoding) *Decoder {
	if legacy == nil {
		legacy = DefaultLegacy()
	}
	return &Decoder{Legacy: legacy}
}

// Decode scans data for valid multi-byte UTF-8 runs, decoding those
// directly, and decodes every other byte individually through Legacy.
func (d *Decoder) Decode(data []byte) (string, error) {
	dec := d.Legacy.NewDecoder()
	var out []byte
	i := 0
	for i < len(data) {
		if n := validUTF8SeqLen(data, i); n > 0 {
			out = append(out, data[i:i+n]...)
			i += n
			continue
		}
		single, err := dec.Bytes(data[i : i+1])
		if err != nil {
			return "", &errs.EncodingError{Encoding: "hybrid", Reason: err.Error()}
		}
		out = append(out, single...)
		i++
	}
	return string(out), nil
}

// validUTF8SeqLen reports the length (2, 3, or 4) of a well-formed
// multi-byte UTF-8 sequence starting at data[i], per RFC 3629, excluding
// the UTF-16 surrogate range U+D800..U+DFFF and overlong encodings. It
// returns 0 if no such sequence starts there (including ASCII bytes,
// which the legacy path handles one at a time).
func validUTF8SeqLen(data []byte, i int) int {
	n := len(data)
	b0 := data[i]

	cont := func(j int) bool {
		return j < n && data[j] >= 0x80 && data[j] <= 0xBF
	}

	switch {
	case b0 >= 0xC2 && b0 <= 0xDF: // 2-byte, excludes C0/C1 overlongs
		if cont(i + 1) {
			r, size := utf8.DecodeRune(data[i : i+2])
			if size == 2 && r != utf8.RuneError {
				return 2
			}
		}
	case b0 == 0xE0: // 3-byte, first continuation restricted to A0-BF (no overlong)
		if i+2 < n && data[i+1] >= 0xA0 && data[i+1] <= 0xBF && cont(i+2) {
			return 3
		}
	case b0 >= 0xE1 && b0 <= 0xEC:
		if cont(i+1) && cont(i+2) {
			return 3
		}
	case b0 == 0xED: // 3-byte, first continuation restricted to 80-9F (excludes surrogates)
		if i+2 < n && data[i+1] >= 0x80 && data[i+1] <= 0x9F && cont(i+2) {
			return 3
		}
	case b0 >= 0xEE && b0 <= 0xEF:
		if cont(i+1) && cont(i+2) {
			return 3
		}
	case b0 == 0xF0: // 4-byte, first continuation restricted to 90-BF (no overlong)
		if i+3 < n && data[i+1] >= 0x90 && data[i+1] <= 0xBF && cont(i+2) && cont(i+3) {
			return 4
		}
	case b0 >= 0xF1 && b0 <= 0xF3:
		if cont(i+1) && cont(i+2) && cont(i+3) {
			return 4
		}
	case b0 == 0xF4: // 4-byte, first continuation restricted to 80-8F (caps at U+10FFFF)
		if i+3 < n && data[i+1] >= 0x80 && data[i+1] <= 0x8F && cont(i+2) && cont(i+3) {
			return 4
		}
	}
	return 0
}
