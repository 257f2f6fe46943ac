package category

import (
	"path/filepath"
	"testing"
)

func TestCategorizeKnownExtensions(t *testing.T) {
	table := NewTable(nil, nil)

	cases := []struct {
		filename string
		want     Category
	}{
		{"housing.step", CAD},
		{"HOUSING.STEP", CAD},
		{"bracket.SLDPRT", CAD},
		{"fixture.mcam", CAM},
		{"op10.nc", NCUnproven},
		{"op20.TAP", NCUnproven},
		{"traveler.pdf", MPI},
		{"inspection.xlsx", MPI},
		{"mystery.xyz", Holding},
		{"README", Holding},
		{".hidden", Holding},
	}
	for _, tc := range cases {
		if got := table.Categorize(tc.filename); got != tc.want {
			t.Errorf("Categorize(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	table := NewTable(nil, nil)
	for _, name := range []string{"", "x", "x.", "x..", "weird.\x00bin"} {
		got := table.Categorize(name)
		if got == "" {
			t.Fatalf("Categorize(%q) returned empty category", name)
		}
	}
}

func TestCategoryOverrides(t *testing.T) {
	table := NewTable(map[string]string{
		".XYZ": "CAM",
		"step": "mpi",
		"bad":  "NOT_A_CATEGORY",
	}, nil)

	if got := table.Categorize("part.xyz"); got != CAM {
		t.Fatalf("override for xyz not applied, got %v", got)
	}
	if got := table.Categorize("part.step"); got != MPI {
		t.Fatalf("override should replace builtin mapping, got %v", got)
	}
	if got := table.Categorize("part.bad"); got != Holding {
		t.Fatalf("unknown category name should fall back to HOLDING, got %v", got)
	}
}

func TestFolderOverrides(t *testing.T) {
	table := NewTable(nil, map[string]string{
		"NC_UNPROVEN": "NC/Incoming",
	})
	if got := table.Folder(NCUnproven); got != filepath.FromSlash("NC/Incoming") {
		t.Fatalf("folder override not applied, got %q", got)
	}
	if got := table.Folder(CAD); got != "CAD" {
		t.Fatalf("default folder changed unexpectedly, got %q", got)
	}
}

func TestFoldersListsEveryCategory(t *testing.T) {
	table := NewTable(nil, nil)
	folders := table.Folders()
	if len(folders) != 7 {
		t.Fatalf("expected 7 folders, got %d: %v", len(folders), folders)
	}
}
