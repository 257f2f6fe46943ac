package naming

import (
	"testing"

	"steward/internal/pattern"
)

func TestCheckCompliantName(t *testing.T) {
	verdict := NewNamer(nil).Check("ABC-123_REV-A_housing.step")
	if !verdict.Compliant {
		t.Fatalf("expected compliant verdict, got %+v", verdict)
	}
	if verdict.Fields.PartNumber != "ABC-123" {
		t.Fatalf("part = %q, want ABC-123", verdict.Fields.PartNumber)
	}
	if verdict.Fields.Revision != "A" {
		t.Fatalf("revision = %q, want A", verdict.Fields.Revision)
	}
	if verdict.Suggested != "" || verdict.Violation != "" {
		t.Fatalf("compliant verdict should carry no suggestion or violation: %+v", verdict)
	}
}

func TestCheckSuggestsCanonicalName(t *testing.T) {
	cases := []struct {
		filename  string
		suggested string
	}{
		{"abc-123 rev a housing.STEP", "ABC-123_REV-A_housing.step"},
		{"ABC-123_REVB_top cover.dxf", "ABC-123_REV-B_top-cover.dxf"},
		{"10045-01_R2_fixture.nc", "10045-01_REV-2_fixture.nc"},
	}
	namer := NewNamer(pattern.NewExtractor())
	for _, tc := range cases {
		verdict := namer.Check(tc.filename)
		if verdict.Compliant {
			t.Errorf("Check(%q) unexpectedly compliant", tc.filename)
			continue
		}
		if verdict.Suggested != tc.suggested {
			t.Errorf("Check(%q).Suggested = %q, want %q", tc.filename, verdict.Suggested, tc.suggested)
		}
	}
}

func TestCheckMissingFieldsRequiresReview(t *testing.T) {
	verdict := NewNamer(nil).Check("notes.txt")
	if verdict.Compliant {
		t.Fatal("notes.txt should not be compliant")
	}
	if verdict.Suggested != "" {
		t.Fatalf("missing fields must not produce a guessed suggestion, got %q", verdict.Suggested)
	}
	if verdict.Violation == "" {
		t.Fatal("expected a violation describing the missing fields")
	}
}

func TestCanonicalAssembly(t *testing.T) {
	got := Canonical("abc-123", "a", "Upper Housing v2", ".STEP")
	want := "ABC-123_REV-A_upper-housing-v2.step"
	if got != want {
		t.Fatalf("Canonical = %q, want %q", got, want)
	}
	if got := Canonical("ABC-1", "B", "", "nc"); got != "ABC-1_REV-B_file.nc" {
		t.Fatalf("empty description should fall back, got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Top Cover":      "top-cover",
		"__weird__name_": "weird-name",
		"a..b":           "a-b",
		"":               "",
	}
	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Errorf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}
