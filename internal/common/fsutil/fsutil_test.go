package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected prefix %s, got %s", home, got)
	}
	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path must pass through, got %s", got)
	}
	if got, _ := ExpandHome(""); got != "" {
		t.Fatalf("empty path must pass through, got %s", got)
	}
}

func TestFileExists(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "model.bin")
	if FileExists(p) {
		t.Fatalf("missing file reported as existing")
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !FileExists(p) {
		t.Fatalf("existing file not detected")
	}
	if FileExists(d) {
		t.Fatalf("directory must not count as a file")
	}
}
