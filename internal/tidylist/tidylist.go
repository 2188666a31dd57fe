// Package tidylist implements the tidy-list and structured-record mode
// conversions of SPEC_FULL.md §4.7: the common intermediate
// representation (an ordered list of tag/data pairs, optionally preceded
// by synthetic "mfn"/"status" pairs) that both the ISO and MST raw
// record codecs convert to and from, and that in turn converts to and
// from the six user-visible JSON/CSV record shapes.
//
// Decode/ToEntries are grounded on original_source/ioisis/fieldutils.py's
// tl2dict/tl_decode pair, per SPEC_FULL.md §4.7's supplement: tl2dict
// splits the leading synthetic "mfn"/"status" pairs from the real field
// pairs and groups the latter by tag, which is exactly what Decode does
// here before the six modes fan out from it.
package tidylist

import (
	"strconv"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/subfield"
)

// Entry is one tidy-list pair: a tag (including the synthetic "mfn" and
// "status" tags) and its decoded string value.
type Entry struct {
	Tag  string
	Data string
}

// Record is a tidy list split into its synthetic bookkeeping pairs and
// its real fields, grouped by tag in order of first appearance.
type Record struct {
	MFN       int
	HasMFN    bool
	Active    bool
	HasStatus bool
	Tags      []string
	ByTag     map[string][]string
}

// Decode splits a raw tidy list into a Record, per tl2dict.
func Decode(list []Entry) (Record, error) {
	rec := Record{ByTag: make(map[string][]string)}
	for _, e := range list {
		switch e.Tag {
		case "mfn":
			n, err := strconv.Atoi(e.Data)
			if err != nil {
				return Record{}, errs.NewFormatError("tidy list", "invalid mfn %q", e.Data)
			}
			rec.MFN, rec.HasMFN = n, true
		case "status":
			if e.Data != "0" && e.Data != "1" {
				return Record{}, errs.NewFormatError("tidy list", "invalid status %q", e.Data)
			}
			rec.Active, rec.HasStatus = e.Data == "0", true
		default:
			if _, ok := rec.ByTag[e.Tag]; !ok {
				rec.Tags = append(rec.Tags, e.Tag)
			}
			rec.ByTag[e.Tag] = append(rec.ByTag[e.Tag], e.Data)
		}
	}
	return rec, nil
}

// ToEntries reassembles rec into a raw tidy list, synthetic pairs first.
func (rec Record) ToEntries() []Entry {
	var out []Entry
	if rec.HasMFN {
		out = append(out, Entry{Tag: "mfn", Data: strconv.Itoa(rec.MFN)})
	}
	if rec.HasStatus {
		status := "1"
		if rec.Active {
			status = "0"
		}
		out = append(out, Entry{Tag: "status", Data: status})
	}
	for _, tag := range rec.Tags {
		for _, data := range rec.ByTag[tag] {
			out = append(out, Entry{Tag: tag, Data: data})
		}
	}
	return out
}

// FieldMode renders rec as {tag: [raw_field, …], …} plus the synthetic
// "mfn"/"active" keys when present.
func (rec Record) FieldMode() map[string]interface{} {
	out := map[string]interface{}{}
	if rec.HasMFN {
		out["mfn"] = rec.MFN
	}
	if rec.HasStatus {
		out["active"] = rec.Active
	}
	for _, tag := range rec.Tags {
		values := make([]string, len(rec.ByTag[tag]))
		copy(values, rec.ByTag[tag])
		out[tag] = values
	}
	return out
}

// FromFieldMode rebuilds a Record from a decoded field-mode JSON object
// or from FieldMode's own output.
func FromFieldMode(m map[string]interface{}) (Record, error) {
	rec := Record{ByTag: make(map[string][]string)}
	if v, ok := m["mfn"]; ok {
		n, err := toInt(v)
		if err != nil {
			return Record{}, err
		}
		rec.MFN, rec.HasMFN = n, true
	}
	if v, ok := m["active"]; ok {
		b, ok := v.(bool)
		if !ok {
			return Record{}, errs.NewFormatError("field mode", "active must be a boolean")
		}
		rec.Active, rec.HasStatus = b, true
	}
	for tag, v := range m {
		if tag == "mfn" || tag == "active" {
			continue
		}
		values, err := toStringSlice(v)
		if err != nil {
			return Record{}, err
		}
		rec.Tags = append(rec.Tags, tag)
		rec.ByTag[tag] = values
	}
	return rec, nil
}

// SubfieldPairs is one field's decomposed ordered (key, value) pairs, as
// rendered in the "pairs" mode.
type SubfieldPairs [][2]string

// PairsMode renders rec as {tag: [[[k, v], …], …], …}.
func (rec Record) PairsMode(sp *subfield.Parser) map[string]interface{} {
	out := baseKeys(rec)
	for _, tag := range rec.Tags {
		var fieldPairs []SubfieldPairs
		for _, raw := range rec.ByTag[tag] {
			pairs := sp.Parse([]byte(raw))
			sfp := make(SubfieldPairs, len(pairs))
			for i, p := range pairs {
				sfp[i] = [2]string{string(p.Key), string(p.Value)}
			}
			fieldPairs = append(fieldPairs, sfp)
		}
		out[tag] = fieldPairs
	}
	return out
}

// FromPairsMode rebuilds a Record from a decoded pairs-mode JSON object
// or from PairsMode's own output.
func FromPairsMode(m map[string]interface{}, sp *subfield.Parser) (Record, error) {
	rec, err := fromBaseKeys(m)
	if err != nil {
		return Record{}, err
	}
	for tag, v := range m {
		if tag == "mfn" || tag == "active" {
			continue
		}
		if typed, ok := v.([]SubfieldPairs); ok {
			generic := make([]interface{}, len(typed))
			for i, sfp := range typed {
				pl := make([]interface{}, len(sfp))
				for j, p := range sfp {
					pl[j] = []interface{}{p[0], p[1]}
				}
				generic[i] = pl
			}
			v = generic
		}
		fields, ok := v.([]interface{})
		if !ok {
			return Record{}, errs.NewFormatError("pairs mode", "tag %q must be an array", tag)
		}
		for _, fv := range fields {
			pairList, ok := fv.([]interface{})
			if !ok {
				return Record{}, errs.NewFormatError("pairs mode", "tag %q field must be an array of pairs", tag)
			}
			var pairs []subfield.Pair
			for _, pv := range pairList {
				pair, ok := pv.([]interface{})
				if !ok || len(pair) != 2 {
					return Record{}, errs.NewFormatError("pairs mode", "tag %q has a malformed pair", tag)
				}
				k, _ := pair[0].(string)
				v, _ := pair[1].(string)
				pairs = append(pairs, subfield.Pair{Key: []byte(k), Value: []byte(v)})
			}
			raw, err := sp.Unparse(pairs)
			if err != nil {
				return Record{}, err
			}
			rec.Tags = appendOnce(rec.Tags, tag)
			rec.ByTag[tag] = append(rec.ByTag[tag], string(raw))
		}
	}
	return rec, nil
}

// NestMode renders rec as {tag: [{k: v, …}, …], …}; on a duplicate key
// within one field's subfields, lastWins selects whether the last or the
// first occurrence is kept.
func (rec Record) NestMode(sp *subfield.Parser, lastWins bool) map[string]interface{} {
	out := baseKeys(rec)
	for _, tag := range rec.Tags {
		var nested []map[string]string
		for _, raw := range rec.ByTag[tag] {
			pairs := sp.Parse([]byte(raw))
			m := make(map[string]string, len(pairs))
			for _, p := range pairs {
				k := string(p.Key)
				if _, seen := m[k]; seen && !lastWins {
					continue
				}
				m[k] = string(p.Value)
			}
			nested = append(nested, m)
		}
		out[tag] = nested
	}
	return out
}

// FromNestMode rebuilds a Record from a decoded nest/inest-mode JSON
// object. Each k:v map becomes a single-occurrence subfield pair per key;
// the mode's intrinsic duplicate-key loss (documented in spec.md §4.7)
// means a record built this way cannot recover subfields repeated under
// the same key in the original field.
func FromNestMode(m map[string]interface{}, sp *subfield.Parser) (Record, error) {
	rec, err := fromBaseKeys(m)
	if err != nil {
		return Record{}, err
	}
	for tag, v := range m {
		if tag == "mfn" || tag == "active" {
			continue
		}
		fields, ok := v.([]interface{})
		if !ok {
			return Record{}, errs.NewFormatError("nest mode", "tag %q must be an array", tag)
		}
		for _, fv := range fields {
			kv, ok := fv.(map[string]interface{})
			if !ok {
				return Record{}, errs.NewFormatError("nest mode", "tag %q field must be an object", tag)
			}
			var pairs []subfield.Pair
			for k, vv := range kv {
				s, ok := vv.(string)
				if !ok {
					return Record{}, errs.NewFormatError("nest mode", "tag %q subfield %q must be a string", tag, k)
				}
				pairs = append(pairs, subfield.Pair{Key: []byte(k), Value: []byte(s)})
			}
			raw, err := sp.Unparse(pairs)
			if err != nil {
				return Record{}, err
			}
			rec.Tags = appendOnce(rec.Tags, tag)
			rec.ByTag[tag] = append(rec.ByTag[tag], string(raw))
		}
	}
	return rec, nil
}

// TidyRow is one row of the "tidy" mode: one row per field, index is the
// field's 0-based occurrence position within its tag.
type TidyRow struct {
	MFN   int    `json:"mfn,omitempty"`
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	Data  string `json:"data"`
}

// TidyRows renders rec as the ordered "tidy" mode row sequence.
func (rec Record) TidyRows() []TidyRow {
	var out []TidyRow
	for _, tag := range rec.Tags {
		for i, raw := range rec.ByTag[tag] {
			out = append(out, TidyRow{MFN: rec.MFN, Index: i, Tag: tag, Data: raw})
		}
	}
	return out
}

// FromTidyRows rebuilds a Record from tidy-mode rows, which must already
// be grouped/ordered by tag then index.
func FromTidyRows(rows []TidyRow) Record {
	rec := Record{ByTag: make(map[string][]string)}
	for _, row := range rows {
		if row.MFN != 0 {
			rec.MFN, rec.HasMFN = row.MFN, true
		}
		rec.Tags = appendOnce(rec.Tags, row.Tag)
		rec.ByTag[row.Tag] = append(rec.ByTag[row.Tag], row.Data)
	}
	return rec
}

// STidyRow is one row of the "stidy" mode: one row per decomposed
// subfield, sindex is the subfield's 0-based position within its field.
type STidyRow struct {
	MFN    int    `json:"mfn,omitempty"`
	Index  int    `json:"index"`
	Tag    string `json:"tag"`
	SIndex int    `json:"sindex"`
	Sub    string `json:"sub"`
	Data   string `json:"data"`
}

// STidyRows renders rec as the ordered "stidy" mode row sequence.
func (rec Record) STidyRows(sp *subfield.Parser) []STidyRow {
	var out []STidyRow
	for _, tag := range rec.Tags {
		for i, raw := range rec.ByTag[tag] {
			pairs := sp.Parse([]byte(raw))
			for si, p := range pairs {
				out = append(out, STidyRow{
					MFN: rec.MFN, Index: i, Tag: tag,
					SIndex: si, Sub: string(p.Key), Data: string(p.Value),
				})
			}
		}
	}
	return out
}

// FromSTidyRows rebuilds a Record from stidy-mode rows by re-unparsing
// each field's subfield rows back into raw field strings.
func FromSTidyRows(rows []STidyRow, sp *subfield.Parser) (Record, error) {
	rec := Record{ByTag: make(map[string][]string)}
	type fieldKey struct {
		tag   string
		index int
	}
	order := []fieldKey{}
	byField := map[fieldKey][]subfield.Pair{}
	for _, row := range rows {
		if row.MFN != 0 {
			rec.MFN, rec.HasMFN = row.MFN, true
		}
		k := fieldKey{row.Tag, row.Index}
		if _, ok := byField[k]; !ok {
			order = append(order, k)
		}
		byField[k] = append(byField[k], subfield.Pair{Key: []byte(row.Sub), Value: []byte(row.Data)})
	}
	for _, k := range order {
		raw, err := sp.Unparse(byField[k])
		if err != nil {
			return Record{}, err
		}
		rec.Tags = appendOnce(rec.Tags, k.tag)
		rec.ByTag[k.tag] = append(rec.ByTag[k.tag], string(raw))
	}
	return rec, nil
}

func baseKeys(rec Record) map[string]interface{} {
	out := map[string]interface{}{}
	if rec.HasMFN {
		out["mfn"] = rec.MFN
	}
	if rec.HasStatus {
		out["active"] = rec.Active
	}
	return out
}

func fromBaseKeys(m map[string]interface{}) (Record, error) {
	rec := Record{ByTag: make(map[string][]string)}
	if v, ok := m["mfn"]; ok {
		n, err := toInt(v)
		if err != nil {
			return Record{}, err
		}
		rec.MFN, rec.HasMFN = n, true
	}
	if v, ok := m["active"]; ok {
		b, ok := v.(bool)
		if !ok {
			return Record{}, errs.NewFormatError("tidy list", "active must be a boolean")
		}
		rec.Active, rec.HasStatus = b, true
	}
	return rec, nil
}

func appendOnce(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, errs.NewFormatError("tidy list", "expected a number, got %T", v)
	}
}

func toStringSlice(v interface{}) ([]string, error) {
	if ss, ok := v.([]string); ok {
		return append([]string(nil), ss...), nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, errs.NewFormatError("field mode", "expected an array of strings")
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, errs.NewFormatError("field mode", "expected an array of strings")
		}
		out[i] = s
	}
	return out, nil
}
