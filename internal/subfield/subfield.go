// Package subfield implements the (key, value) subfield layer embedded
// inside a single ISO/MST field value, per the configurable prefix-driven
// convention used by the CDS/ISIS family of formats.
//
// Grounded on the construct-free, hand-rolled grammar advised for a
// systems-language reimplementation (see SPEC_FULL.md §4.1); the original
// Python implementation drives this with a regular expression using a
// zero-width lookbehind, which Go's RE2-based regexp cannot express, so
// parsing here is a direct left-to-right byte scan instead.
package subfield

import (
	"bytes"
	"strconv"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// Pair is a single (key, value) subfield entry.
type Pair struct {
	Key   []byte
	Value []byte
}

// Config holds the immutable, validated tunables for a Parser.
type Config struct {
	// Prefix marks the start of each new subfield.
	Prefix []byte
	// Length is the number of bytes after Prefix that form the subfield key.
	Length int
	// Lower lowercases keys on parse and unparse.
	Lower bool
	// First is the key assigned to the leading keyless run.
	First []byte
	// Empty, if true, retains (key, "") entries; else drops them.
	Empty bool
	// Number, if true, appends a decimal counter to the 2nd+ occurrence
	// of a key within the same field, starting at 1.
	Number bool
	// Zero, if true (and Number), appends "0" to first occurrences too.
	Zero bool
	// Check, if true, Unparse verifies the output reparses to the input.
	Check bool
}

// NewConfig validates opts and returns an immutable Config.
func NewConfig(opts Config) (Config, error) {
	if len(opts.Prefix) == 0 {
		return Config{}, errs.NewConfigurationError("subfield prefix must not be empty")
	}
	if opts.Length < 0 {
		return Config{}, errs.NewConfigurationError("subfield key length must not be negative")
	}
	return opts, nil
}

// Parser parses and unparses field values into ordered subfield pairs.
type Parser struct {
	cfg Config
}

// New builds a Parser from an already-validated Config.
func New(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

type marker struct {
	start, end int
	key        []byte
}

// findMarkers scans field for every non-overlapping occurrence of
// Prefix immediately followed by Length key bytes. A bare Prefix with
// fewer than Length bytes remaining in the field is not a marker and is
// left as ordinary data.
func findMarkers(field, prefix []byte, length int) []marker {
	var markers []marker
	pos := 0
	for pos <= len(field) {
		idx := bytes.Index(field[pos:], prefix)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(prefix) + length
		if end <= len(field) {
			markers = append(markers, marker{
				start: start,
				end:   end,
				key:   field[start+len(prefix) : end],
			})
			pos = end
		} else {
			pos = start + 1
		}
	}
	return markers
}

// Parse generates the ordered (key, value) pairs for the given field
// value, applying lowering, numbering, and empty-filtering.
func (p *Parser) Parse(field []byte) []Pair {
	markers := findMarkers(field, p.cfg.Prefix, p.cfg.Length)

	type rawRun struct {
		key   []byte // nil means "leading keyless run"
		value []byte
	}
	runs := make([]rawRun, 0, len(markers)+1)
	start := 0
	var curKey []byte
	for _, m := range markers {
		runs = append(runs, rawRun{key: curKey, value: field[start:m.start]})
		curKey = m.key
		start = m.end
	}
	runs = append(runs, rawRun{key: curKey, value: field[start:]})

	counts := map[string]int{}
	pairs := make([]Pair, 0, len(runs))
	for _, r := range runs {
		if !p.cfg.Empty && len(r.value) == 0 {
			continue
		}
		key := r.key
		if key == nil {
			key = p.cfg.First
		}
		if p.cfg.Lower {
			key = bytes.ToLower(key)
		}
		if p.cfg.Number {
			ks := string(key)
			n := counts[ks]
			counts[ks] = n + 1
			if p.cfg.Zero || n > 0 {
				key = append(append([]byte{}, key...), []byte(strconv.Itoa(n))...)
			}
		}
		pairs = append(pairs, Pair{Key: key, Value: r.value})
	}
	return pairs
}

// expectedFirstKey returns the key that a leading pair must have in
// order to be emitted without a Prefix marker.
func (p *Parser) expectedFirstKey() []byte {
	key := p.cfg.First
	if p.cfg.Lower {
		key = bytes.ToLower(key)
	}
	if p.cfg.Number && p.cfg.Zero {
		key = append(append([]byte{}, key...), '0')
	}
	return key
}

// Unparse encodes an ordered (key, value) pair list back into a single
// field value.
func (p *Parser) Unparse(pairs []Pair) ([]byte, error) {
	expectedFirst := p.expectedFirstKey()

	var buf bytes.Buffer
	emitted := 0
	for _, pr := range pairs {
		if !p.cfg.Empty && len(pr.Value) == 0 {
			continue
		}
		key := pr.Key
		if p.cfg.Lower {
			key = bytes.ToLower(key)
		}
		if emitted == 0 && bytes.Equal(key, expectedFirst) {
			buf.Write(pr.Value)
		} else {
			if len(key) < p.cfg.Length {
				return nil, &errs.InvalidSubfieldKey{Key: string(key), Length: p.cfg.Length}
			}
			buf.Write(p.cfg.Prefix)
			buf.Write(key[:p.cfg.Length])
			buf.Write(pr.Value)
		}
		emitted++
	}

	result := buf.Bytes()
	if p.cfg.Check {
		reparsed := p.Parse(result)
		if !pairsEqual(reparsed, pairs) {
			return nil, &errs.SubfieldRoundTripMismatch{Field: string(result)}
		}
	}
	return result, nil
}

func pairsEqual(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Key, b[i].Key) || !bytes.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
