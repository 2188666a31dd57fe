package tagfmt

import "testing"

func TestRenderStringModeZ(t *testing.T) {
	tpl, err := Compile(StringMode, 3, "%z")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, tt := range []struct {
		raw  string
		want string
	}{
		{"000", "0"},
		{"001", "1"},
		{"245", "245"},
	} {
		got, err := tpl.Render(RawTag{Str: tt.raw}, 0)
		if err != nil {
			t.Fatalf("Render(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestScanStringModeZ(t *testing.T) {
	tpl, err := Compile(StringMode, 3, "%z")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tag, idx, err := tpl.Scan("1")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if tag.Str != "001" || idx != 0 {
		t.Fatalf("Scan(%q) = (%q, %d)", "1", tag.Str, idx)
	}
}

func TestRenderIntModeD(t *testing.T) {
	tpl, err := Compile(IntMode, 0, "v%d")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := tpl.Render(RawTag{Int: 245}, 3)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "v245" {
		t.Fatalf("Render = %q, want v245", got)
	}
}

func TestAmbiguousTemplate(t *testing.T) {
	tpl, err := Compile(StringMode, 3, "%z-%z")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, _, err := tpl.Scan("1-2"); err == nil {
		t.Fatal("expected an AmbiguousTagTemplate error")
	}
	tag, _, err := tpl.Scan("1-1")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if tag.Str != "001" {
		t.Fatalf("Scan tag = %q, want 001", tag.Str)
	}
}

func TestRenderIndex(t *testing.T) {
	tpl, err := Compile(StringMode, 3, "%z[%i]")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := tpl.Render(RawTag{Str: "010"}, 4)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "10[4]" {
		t.Fatalf("Render = %q, want 10[4]", got)
	}
}
