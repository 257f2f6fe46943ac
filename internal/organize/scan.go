package organize

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"steward/internal/services"
)

// Scan lists candidate files under dir. Hidden entries, log artifacts, and
// anything already inside a managed folder are skipped so a sweep over the
// root never reprocesses organized files.
func (o *Organizer) Scan(dir string, recursive bool) ([]string, error) {
	managed := o.managedDirs()

	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path == dir {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") || managed[path] {
				return filepath.SkipDir
			}
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFile(entry.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organize", "scan", "failed to scan directory", err)
	}
	sort.Strings(files)
	return files, nil
}

// managedDirs returns the absolute top-level taxonomy directories under the
// root. Only the first path element matters for exclusion; "NC Files"
// covers both PROVEN and UNPROVEN.
func (o *Organizer) managedDirs() map[string]bool {
	managed := make(map[string]bool)
	for _, folder := range o.table.Folders() {
		head := folder
		if idx := strings.IndexByte(folder, filepath.Separator); idx >= 0 {
			head = folder[:idx]
		}
		managed[filepath.Join(o.root, head)] = true
	}
	return managed
}

// Excluded reports whether path falls outside the pipeline's scope:
// scratch or hidden files, and anything already inside a managed taxonomy
// folder. Event-driven callers apply the same exclusions Scan applies to
// a sweep, so a file the organizer just placed is never dispatched again.
func (o *Organizer) Excluded(path string) bool {
	if skipFile(filepath.Base(path)) {
		return true
	}
	sep := string(filepath.Separator)
	for dir := range o.managedDirs() {
		if path == dir || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}
	return false
}

func skipFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".log", ".db", ".db-wal", ".db-shm", ".tmp", ".part", ".crdownload":
		return true
	}
	return false
}
