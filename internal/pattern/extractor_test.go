package pattern

import "testing"

func TestExtractCanonicalName(t *testing.T) {
	fields := NewExtractor().Extract("ABC-123_REV-A_housing.step")
	if fields.PartNumber != "ABC-123" {
		t.Fatalf("part = %q, want ABC-123", fields.PartNumber)
	}
	if fields.Revision != "A" {
		t.Fatalf("revision = %q, want A", fields.Revision)
	}
	if fields.Customer != "" {
		t.Fatalf("customer = %q, want empty", fields.Customer)
	}
	if !fields.Complete() {
		t.Fatal("canonical name should extract complete hierarchy fields")
	}
}

func TestExtractRevisionForms(t *testing.T) {
	cases := []struct {
		filename string
		part     string
		revision string
	}{
		{"ABC-123_REV-A_housing.step", "ABC-123", "A"},
		{"abc-123_rev-b_cover.stp", "ABC-123", "B"},
		{"ABC-123_REVC_plate.dxf", "ABC-123", "C"},
		{"10045-01_R2_fixture.nc", "10045-01", "2"},
		{"10045_V3_program.tap", "10045", "3"},
		{"XYZ-99_REV-12_bracket.igs", "XYZ-99", "12"},
		{"ABC-123_housing.step", "ABC-123", ""},
	}
	extractor := NewExtractor()
	for _, tc := range cases {
		fields := extractor.Extract(tc.filename)
		if fields.PartNumber != tc.part {
			t.Errorf("Extract(%q).PartNumber = %q, want %q", tc.filename, fields.PartNumber, tc.part)
		}
		if fields.Revision != tc.revision {
			t.Errorf("Extract(%q).Revision = %q, want %q", tc.filename, fields.Revision, tc.revision)
		}
	}
}

func TestExtractFirstPatternWins(t *testing.T) {
	// Both the REV form and the bare R form appear; the earlier-defined
	// REV pattern must win.
	fields := NewExtractor().Extract("ABC-123_REV-A_R9_case.step")
	if fields.Revision != "A" {
		t.Fatalf("revision = %q, want A (REV pattern has priority)", fields.Revision)
	}
}

func TestExtractCustomerPrefix(t *testing.T) {
	fields := NewExtractor().Extract("acme machining__ABC-123_REV-A_housing.step")
	if fields.Customer != "Acme Machining" {
		t.Fatalf("customer = %q, want Acme Machining", fields.Customer)
	}
	if fields.PartNumber != "ABC-123" {
		t.Fatalf("part = %q, want ABC-123", fields.PartNumber)
	}
}

func TestExtractAmbiguousYieldsAbsence(t *testing.T) {
	cases := []string{"notes.txt", "meeting minutes.docx", "readme"}
	extractor := NewExtractor()
	for _, filename := range cases {
		fields := extractor.Extract(filename)
		if fields.Complete() {
			t.Errorf("Extract(%q) should not be complete, got %+v", filename, fields)
		}
		if fields.PartNumber != "" {
			t.Errorf("Extract(%q) should not find a part number, got %q", filename, fields.PartNumber)
		}
	}
}

func TestExtractIgnoresDirectoryComponents(t *testing.T) {
	fields := NewExtractor().Extract("/incoming/deep/ABC-123_REV-A_housing.step")
	if fields.PartNumber != "ABC-123" || fields.Revision != "A" {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestCanonicalCustomer(t *testing.T) {
	cases := map[string]string{
		"acme":            "Acme",
		"ACME MACHINING":  "Acme Machining",
		"  acme   corp  ": "Acme Corp",
		"":                "",
	}
	for input, want := range cases {
		if got := CanonicalCustomer(input); got != want {
			t.Errorf("CanonicalCustomer(%q) = %q, want %q", input, got, want)
		}
	}
}
