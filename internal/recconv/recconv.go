// Package recconv bridges the two raw binary record containers
// (internal/iso, internal/mst) to the tag/value tidy list
// (internal/tidylist) that every structured output mode builds on,
// per the data flow in SPEC_FULL.md §2: "byte stream ⇄ line-split byte
// stream ⇄ raw record container ⇄ tidy list ⇄ structured record ⇄ text
// line".
//
// Tag rendering/scanning goes through a compiled internal/tagfmt
// template so that a user-chosen field-tag format (e.g. the ISO default
// "%z", which strips leading zeros, or an MST "%d") governs both
// directions uniformly; field bytes go through a pluggable Codec so the
// same conversion works whether the payload is already UTF-8 or needs
// internal/hybridenc's legacy fallback.
package recconv

import (
	"strconv"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/hybridenc"
	"github.com/scieloorg/ioisis-go/internal/iso"
	"github.com/scieloorg/ioisis-go/internal/mst"
	"github.com/scieloorg/ioisis-go/internal/tagfmt"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// Codec decodes/encodes one field's raw bytes to/from its text
// representation.
type Codec struct {
	Decode func([]byte) (string, error)
	Encode func(string) ([]byte, error)
}

// UTF8Codec treats field bytes as already being valid UTF-8.
func UTF8Codec() Codec {
	return Codec{
		Decode: func(b []byte) (string, error) { return string(b), nil },
		Encode: func(s string) ([]byte, error) { return []byte(s), nil },
	}
}

// HybridCodec decodes through dec (see internal/hybridenc) and encodes
// straight back to UTF-8: the hybrid scheme is a read-side convenience
// for legacy exports with stray UTF-8 runs, not a byte-exact codec, so
// re-encoding a hybrid-decoded record always normalizes it to pure
// UTF-8 rather than attempting to reconstruct the original mix.
func HybridCodec(dec *hybridenc.Decoder) Codec {
	return Codec{
		Decode: dec.Decode,
		Encode: func(s string) ([]byte, error) { return []byte(s), nil },
	}
}

// ISOToTidy converts a parsed ISO record into a tidylist.Record, with an
// optional synthetic mfn value (ISO records have no intrinsic MFN).
func ISOToTidy(rec iso.Record, ftf *tagfmt.Template, codec Codec, mfn int, withMFN bool) (tidylist.Record, error) {
	out := tidylist.Record{ByTag: make(map[string][]string)}
	if withMFN {
		out.MFN, out.HasMFN = mfn, true
	}
	for index, f := range rec.Fields {
		tag, err := ftf.Render(tagfmt.RawTag{Str: f.Tag}, index)
		if err != nil {
			return tidylist.Record{}, err
		}
		value, err := codec.Decode(f.Value)
		if err != nil {
			return tidylist.Record{}, err
		}
		if _, ok := out.ByTag[tag]; !ok {
			out.Tags = append(out.Tags, tag)
		}
		out.ByTag[tag] = append(out.ByTag[tag], value)
	}
	return out, nil
}

// TidyToISO converts a tidylist.Record back into an ISO record's field
// list, scanning each displayed tag key back to its raw 3-char tag via
// ftf.
func TidyToISO(rec tidylist.Record, ftf *tagfmt.Template, codec Codec) (iso.Record, error) {
	var fields []iso.Field
	for _, tag := range rec.Tags {
		for _, value := range rec.ByTag[tag] {
			rawTag, _, err := ftf.Scan(tag)
			if err != nil {
				return iso.Record{}, err
			}
			raw, err := codec.Encode(value)
			if err != nil {
				return iso.Record{}, err
			}
			fields = append(fields, iso.Field{Tag: rawTag.Str, Value: raw})
		}
	}
	return iso.NewRecord(fields), nil
}

// MSTToTidy converts a parsed MST record into a tidylist.Record, always
// carrying its intrinsic MFN and active status.
func MSTToTidy(rec mst.Record, ftf *tagfmt.Template, codec Codec) (tidylist.Record, error) {
	out := tidylist.Record{
		ByTag:     make(map[string][]string),
		MFN:       int(rec.MFN),
		HasMFN:    true,
		Active:    rec.Status == 0,
		HasStatus: true,
	}
	for index, f := range rec.Fields {
		if f.Tag == mst.IBPTag {
			value, err := codec.Decode(f.Value)
			if err != nil {
				return tidylist.Record{}, err
			}
			out.Tags = append(out.Tags, "ibp")
			out.ByTag["ibp"] = append(out.ByTag["ibp"], value)
			continue
		}
		tag, err := ftf.Render(tagfmt.RawTag{Int: f.Tag}, index)
		if err != nil {
			return tidylist.Record{}, err
		}
		value, err := codec.Decode(f.Value)
		if err != nil {
			return tidylist.Record{}, err
		}
		if _, ok := out.ByTag[tag]; !ok {
			out.Tags = append(out.Tags, tag)
		}
		out.ByTag[tag] = append(out.ByTag[tag], value)
	}
	return out, nil
}

// TidyToMST converts a tidylist.Record back into an MST record.
func TidyToMST(rec tidylist.Record, ftf *tagfmt.Template, codec Codec) (mst.Record, error) {
	var fields []mst.Field
	for _, tag := range rec.Tags {
		for _, value := range rec.ByTag[tag] {
			raw, err := codec.Encode(value)
			if err != nil {
				return mst.Record{}, err
			}
			if tag == "ibp" {
				fields = append(fields, mst.Field{Tag: mst.IBPTag, Value: raw})
				continue
			}
			rawTag, _, err := ftf.Scan(tag)
			if err != nil {
				return mst.Record{}, err
			}
			fields = append(fields, mst.Field{Tag: rawTag.Int, Value: raw})
		}
	}
	status := uint16(0)
	if rec.HasStatus && !rec.Active {
		status = 1
	}
	mfn := int32(rec.MFN)
	return mst.Record{MFN: mfn, Status: status, Fields: fields}, nil
}

// DefaultISOTemplate compiles ioisis's historical ISO field-tag format.
func DefaultISOTemplate() (*tagfmt.Template, error) {
	return tagfmt.Compile(tagfmt.StringMode, iso.TagLen, "%z")
}

// DefaultMSTTemplate compiles ioisis's historical MST field-tag format.
func DefaultMSTTemplate() (*tagfmt.Template, error) {
	return tagfmt.Compile(tagfmt.IntMode, 0, "%d")
}

// ParseMFN converts a decimal mfn string (as read back from JSON/CSV)
// into an int, surfacing a FormatError instead of strconv's.
func ParseMFN(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewFormatError("mfn", "invalid mfn %q", s)
	}
	return n, nil
}
