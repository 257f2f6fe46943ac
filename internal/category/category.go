package category

import (
	"path/filepath"
	"sort"
	"strings"
)

// Category identifies a destination folder class in the managed taxonomy.
type Category string

const (
	CAD        Category = "CAD"
	CAM        Category = "CAM"
	NCProven   Category = "NC_PROVEN"
	NCUnproven Category = "NC_UNPROVEN"
	MPI        Category = "MPI"
	Archive    Category = "ARCHIVE"
	Holding    Category = "HOLDING"
)

// Folder returns the default on-disk folder path for a category, relative
// to the managed root.
func (c Category) Folder() string {
	if folder, ok := defaultFolders[c]; ok {
		return folder
	}
	return defaultFolders[Holding]
}

var defaultFolders = map[Category]string{
	CAD:        "CAD",
	CAM:        "CAM",
	NCProven:   filepath.Join("NC Files", "PROVEN"),
	NCUnproven: filepath.Join("NC Files", "UNPROVEN"),
	MPI:        "MPI",
	Archive:    "ARCHIVE",
	Holding:    "HOLDING",
}

// Incoming NC programs land in UNPROVEN; promotion to PROVEN is a manual
// shop decision after first-article inspection.
var defaultExtensions = map[Category][]string{
	CAD:        {"step", "stp", "igs", "iges", "stl", "dwg", "dxf", "catpart", "catproduct", "prt", "sldprt", "sldasm"},
	CAM:        {"mcam", "cam", "camproj", "ncl", "ncp", "operations"},
	NCUnproven: {"nc", "cnc", "tap", "mpf", "ngc", "eia", "min", "din"},
	MPI:        {"pdf", "doc", "docx", "txt", "xlsx", "xls"},
}

// Table resolves extensions to categories. The zero value is unusable;
// construct with NewTable.
type Table struct {
	byExtension map[string]Category
	folders     map[Category]string
}

// NewTable builds a lookup table from the built-in extension sets,
// applying the provided overrides. Override keys are extensions without a
// dot; override values are category names (unknown names fall back to
// HOLDING at lookup time, keeping the function total).
func NewTable(categoryOverrides map[string]string, folderOverrides map[string]string) *Table {
	byExt := make(map[string]Category, 64)
	for cat, exts := range defaultExtensions {
		for _, ext := range exts {
			byExt[ext] = cat
		}
	}
	for ext, name := range categoryOverrides {
		key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if key == "" {
			continue
		}
		byExt[key] = Parse(name)
	}

	folders := make(map[Category]string, len(defaultFolders))
	for cat, folder := range defaultFolders {
		folders[cat] = folder
	}
	for name, folder := range folderOverrides {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			continue
		}
		folders[Parse(name)] = filepath.FromSlash(folder)
	}

	return &Table{byExtension: byExt, folders: folders}
}

// Parse converts a category name into a known Category, defaulting to
// HOLDING for anything unrecognized.
func Parse(name string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(name))) {
	case CAD:
		return CAD
	case CAM:
		return CAM
	case NCProven:
		return NCProven
	case NCUnproven:
		return NCUnproven
	case MPI:
		return MPI
	case Archive:
		return Archive
	default:
		return Holding
	}
}

// Categorize resolves the category for a filename or extension. Matching is
// case-insensitive; files without an extension or with an unknown extension
// resolve to HOLDING.
func (t *Table) Categorize(filename string) Category {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return Holding
	}
	if cat, ok := t.byExtension[ext]; ok {
		return cat
	}
	return Holding
}

// Folder returns the folder path for a category relative to the managed
// root, honoring configured overrides.
func (t *Table) Folder(cat Category) string {
	if folder, ok := t.folders[cat]; ok {
		return folder
	}
	return t.folders[Holding]
}

// Folders returns every category folder path, sorted, for taxonomy
// initialization.
func (t *Table) Folders() []string {
	out := make([]string, 0, len(t.folders))
	for _, folder := range t.folders {
		out = append(out, folder)
	}
	sort.Strings(out)
	return out
}
