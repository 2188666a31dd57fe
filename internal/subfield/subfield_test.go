package subfield

import (
	"testing"
)

func mustConfig(t *testing.T, cfg Config) Config {
	t.Helper()
	out, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return out
}

func TestParseBasic(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		in    string
		pairs []Pair
	}{
		{
			name: "scielo example",
			cfg:  Config{Prefix: []byte("^"), Length: 1, First: []byte("_"), Number: true},
			in:   "data^ttext^len^tTrail",
			pairs: []Pair{
				{Key: []byte("_"), Value: []byte("data")},
				{Key: []byte("t"), Value: []byte("text")},
				{Key: []byte("l"), Value: []byte("en")},
				{Key: []byte("t1"), Value: []byte("Trail")},
			},
		},
		{
			name: "no numbering",
			cfg:  Config{Prefix: []byte("#F#"), Length: 1, Number: false},
			in:   "data#F#ttext#F#len#F#tTrail",
			pairs: []Pair{
				{Key: []byte(""), Value: []byte("data")},
				{Key: []byte("t"), Value: []byte("text")},
				{Key: []byte("l"), Value: []byte("en")},
				{Key: []byte("t"), Value: []byte("Trail")},
			},
		},
		{
			name: "leading marker gives empty first run",
			cfg:  Config{Prefix: []byte("^"), Length: 1, First: []byte("_"), Empty: true},
			in:   "^aX",
			pairs: []Pair{
				{Key: []byte("_"), Value: []byte("")},
				{Key: []byte("a"), Value: []byte("X")},
			},
		},
		{
			name: "back to back prefixes yield empty run",
			cfg:  Config{Prefix: []byte("^"), Length: 1, Empty: true},
			in:   "^a^bX",
			pairs: []Pair{
				{Key: []byte(""), Value: []byte("")},
				{Key: []byte("a"), Value: []byte("")},
				{Key: []byte("b"), Value: []byte("X")},
			},
		},
		{
			name: "trailing bare prefix is data, not a marker",
			cfg:  Config{Prefix: []byte("^"), Length: 1},
			in:   "a^",
			pairs: []Pair{
				{Key: []byte(""), Value: []byte("a^")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mustConfig(t, tt.cfg)
			p := New(cfg)
			got := p.Parse([]byte(tt.in))
			if !pairsEqual(got, tt.pairs) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.in, got, tt.pairs)
			}
		})
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	cfg := mustConfig(t, Config{
		Prefix: []byte("^"), Length: 1, First: []byte("_"),
		Empty: true, Number: true, Zero: false, Check: true,
	})
	p := New(cfg)

	field := []byte("data^ttext^len^tTrail")
	pairs := p.Parse(field)
	out, err := p.Unparse(pairs)
	if err != nil {
		t.Fatalf("Unparse: %v", err)
	}
	if string(out) != string(field) {
		t.Fatalf("Unparse round trip = %q, want %q", out, field)
	}
}

func TestUnparseInvalidKey(t *testing.T) {
	cfg := mustConfig(t, Config{Prefix: []byte("^"), Length: 2})
	p := New(cfg)
	_, err := p.Unparse([]Pair{{Key: []byte("a"), Value: []byte("x")}})
	if err == nil {
		t.Fatal("expected an InvalidSubfieldKey error")
	}
}

func TestNewConfigRejectsEmptyPrefix(t *testing.T) {
	if _, err := NewConfig(Config{Prefix: nil, Length: 1}); err == nil {
		t.Fatal("expected a ConfigurationError for empty prefix")
	}
}
