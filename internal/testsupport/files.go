package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with at least size bytes of part-file shaped
// content, creating parent directories as needed. The payload looks like a
// short NC program so fixtures resemble what lands in a real intake folder.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "(%s)\n", filepath.Base(path))
	for block := 1; int64(buf.Len()) < size; block++ {
		fmt.Fprintf(&buf, "N%03d G01 X%.3f Y%.3f F250\n", block*10, float64(block)*1.25, float64(block)*0.5)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
