package cli

import "testing"

func TestFlagDefaults(t *testing.T) {
	fs, o := NewFlagSet("iso2jsonl")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.Mode != "field" || o.FTF != "%z" || o.Dialect != "isis" {
		t.Fatalf("defaults = %+v", o)
	}
}

func TestXyloseOverridesModeAndFTF(t *testing.T) {
	fs, o := NewFlagSet("mst2jsonl")
	if err := fs.Parse([]string{"--xylose"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	o.ApplyXylose()
	if o.Mode != "inest" || o.FTF != "v%z" {
		t.Fatalf("xylose did not override mode/ftf: %+v", o)
	}
}

func TestResolveMSTOptionsBuiltinDialect(t *testing.T) {
	fs, o := NewFlagSet("mst2jsonl")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := o.ResolveMSTOptions()
	if err != nil {
		t.Fatalf("ResolveMSTOptions: %v", err)
	}
	if opts.Packed {
		t.Fatalf("default isis dialect should be unpacked, got %+v", opts)
	}
}

func TestSubfieldConfigFromFlags(t *testing.T) {
	fs, o := NewFlagSet("iso2jsonl")
	if err := fs.Parse([]string{"--prefix=^", "--length=1"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := o.SubfieldConfig()
	if err != nil {
		t.Fatalf("SubfieldConfig: %v", err)
	}
	if string(cfg.Prefix) != "^" || cfg.Length != 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
}
