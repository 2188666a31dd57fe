package tidylist

import (
	"testing"

	"github.com/scieloorg/ioisis-go/internal/subfield"
)

func mustParser(t *testing.T) *subfield.Parser {
	t.Helper()
	cfg, err := subfield.NewConfig(subfield.Config{Prefix: []byte("^"), Length: 1})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return subfield.New(cfg)
}

func TestDecodeSplitsSyntheticPairs(t *testing.T) {
	list := []Entry{
		{Tag: "mfn", Data: "7"},
		{Tag: "status", Data: "0"},
		{Tag: "245", Data: "^aTitle^bSubtitle"},
		{Tag: "245", Data: "^aSecond"},
	}
	rec, err := Decode(list)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !rec.HasMFN || rec.MFN != 7 {
		t.Errorf("MFN = %d (has=%v), want 7", rec.MFN, rec.HasMFN)
	}
	if !rec.HasStatus || !rec.Active {
		t.Errorf("Active = %v (has=%v), want true", rec.Active, rec.HasStatus)
	}
	if len(rec.ByTag["245"]) != 2 {
		t.Fatalf("245 fields = %d, want 2", len(rec.ByTag["245"]))
	}
}

func TestFieldModeRoundTrip(t *testing.T) {
	list := []Entry{
		{Tag: "mfn", Data: "1"},
		{Tag: "001", Data: "12345"},
	}
	rec, err := Decode(list)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := rec.FieldMode()
	back, err := FromFieldMode(m)
	if err != nil {
		t.Fatalf("FromFieldMode: %v", err)
	}
	if back.MFN != 1 || len(back.ByTag["001"]) != 1 || back.ByTag["001"][0] != "12345" {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestPairsModeRoundTrip(t *testing.T) {
	sp := mustParser(t)
	list := []Entry{{Tag: "245", Data: "^aTitle^bSubtitle"}}
	rec, _ := Decode(list)
	m := rec.PairsMode(sp)

	back, err := FromPairsMode(m, sp)
	if err != nil {
		t.Fatalf("FromPairsMode: %v", err)
	}
	if back.ByTag["245"][0] != "^aTitle^bSubtitle" {
		t.Fatalf("round trip = %q", back.ByTag["245"][0])
	}
}

func TestTidyRowsRoundTrip(t *testing.T) {
	list := []Entry{
		{Tag: "mfn", Data: "3"},
		{Tag: "100", Data: "first"},
		{Tag: "100", Data: "second"},
	}
	rec, _ := Decode(list)
	rows := rec.TidyRows()
	if len(rows) != 2 || rows[0].Index != 0 || rows[1].Index != 1 {
		t.Fatalf("TidyRows = %+v", rows)
	}
	back := FromTidyRows(rows)
	if len(back.ByTag["100"]) != 2 || back.ByTag["100"][1] != "second" {
		t.Fatalf("FromTidyRows = %+v", back)
	}
}

func TestSTidyRowsRoundTrip(t *testing.T) {
	sp := mustParser(t)
	list := []Entry{{Tag: "245", Data: "^aTitle^bSubtitle"}}
	rec, _ := Decode(list)
	rows := rec.STidyRows(sp)
	if len(rows) != 2 || rows[0].Sub != "a" || rows[1].Sub != "b" {
		t.Fatalf("STidyRows = %+v", rows)
	}
	back, err := FromSTidyRows(rows, sp)
	if err != nil {
		t.Fatalf("FromSTidyRows: %v", err)
	}
	if back.ByTag["245"][0] != "^aTitle^bSubtitle" {
		t.Fatalf("FromSTidyRows round trip = %q", back.ByTag["245"][0])
	}
}

func TestNestModeLastWinsOnDuplicateKey(t *testing.T) {
	sp := mustParser(t)
	list := []Entry{{Tag: "245", Data: "^aFirst^aSecond"}}
	rec, _ := Decode(list)
	m := rec.NestMode(sp, true)
	nested := m["245"].([]map[string]string)
	if nested[0]["a"] != "Second" {
		t.Fatalf("last-wins nest = %q, want Second", nested[0]["a"])
	}
	mFirst := rec.NestMode(sp, false)
	nestedFirst := mFirst["245"].([]map[string]string)
	if nestedFirst[0]["a"] != "First" {
		t.Fatalf("first-wins nest = %q, want First", nestedFirst[0]["a"])
	}
}
