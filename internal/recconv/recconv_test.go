package recconv

import (
	"testing"

	"github.com/scieloorg/ioisis-go/internal/iso"
	"github.com/scieloorg/ioisis-go/internal/mst"
)

func TestISOToTidyAndBack(t *testing.T) {
	ftf, err := DefaultISOTemplate()
	if err != nil {
		t.Fatalf("DefaultISOTemplate: %v", err)
	}
	rec := iso.NewRecord([]iso.Field{
		{Tag: "001", Value: []byte("12345")},
		{Tag: "245", Value: []byte("A title")},
	})
	tidy, err := ISOToTidy(rec, ftf, UTF8Codec(), 7, true)
	if err != nil {
		t.Fatalf("ISOToTidy: %v", err)
	}
	if !tidy.HasMFN || tidy.MFN != 7 {
		t.Errorf("MFN = %d (has=%v)", tidy.MFN, tidy.HasMFN)
	}
	if tidy.ByTag["1"][0] != "12345" {
		t.Errorf("tag 1 (rendered from 001) = %q, want 12345", tidy.ByTag["1"][0])
	}

	back, err := TidyToISO(tidy, ftf, UTF8Codec())
	if err != nil {
		t.Fatalf("TidyToISO: %v", err)
	}
	if len(back.Fields) != 2 || back.Fields[0].Tag != "001" {
		t.Fatalf("TidyToISO fields = %+v", back.Fields)
	}
}

func TestMSTToTidyAndBack(t *testing.T) {
	ftf, err := DefaultMSTTemplate()
	if err != nil {
		t.Fatalf("DefaultMSTTemplate: %v", err)
	}
	rec := mst.Record{MFN: 3, Status: 0, Fields: []mst.Field{{Tag: 245, Value: []byte("A title")}}}
	tidy, err := MSTToTidy(rec, ftf, UTF8Codec())
	if err != nil {
		t.Fatalf("MSTToTidy: %v", err)
	}
	if tidy.MFN != 3 || !tidy.Active {
		t.Fatalf("tidy = %+v", tidy)
	}
	if tidy.ByTag["245"][0] != "A title" {
		t.Fatalf("tag 245 = %q", tidy.ByTag["245"][0])
	}

	back, err := TidyToMST(tidy, ftf, UTF8Codec())
	if err != nil {
		t.Fatalf("TidyToMST: %v", err)
	}
	if back.MFN != 3 || back.Status != 0 || len(back.Fields) != 1 || back.Fields[0].Tag != 245 {
		t.Fatalf("TidyToMST = %+v", back)
	}
}

func TestMSTIBPFieldRoundTrips(t *testing.T) {
	ftf, _ := DefaultMSTTemplate()
	rec := mst.Record{MFN: 1, Fields: []mst.Field{{Tag: mst.IBPTag, Value: []byte("deadbeef")}}}
	tidy, err := MSTToTidy(rec, ftf, UTF8Codec())
	if err != nil {
		t.Fatalf("MSTToTidy: %v", err)
	}
	if tidy.ByTag["ibp"][0] != "deadbeef" {
		t.Fatalf("ibp field = %q", tidy.ByTag["ibp"][0])
	}
	back, err := TidyToMST(tidy, ftf, UTF8Codec())
	if err != nil {
		t.Fatalf("TidyToMST: %v", err)
	}
	if back.Fields[0].Tag != mst.IBPTag {
		t.Fatalf("Tag = %d, want IBPTag", back.Fields[0].Tag)
	}
}
