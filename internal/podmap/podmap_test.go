package podmap

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "podmap.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesEntriesAndIgnoresComments(t *testing.T) {
	path := writeMap(t, `# pod to engineering manager
Payments-Pod1: Dana Moore
Payments-Pod2: Chris Webb

# growth vertical
Growth-Pod1: Sam Ortiz
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(m), m)
	}
	if got := m.Lookup("Payments-Pod2"); got != "Chris Webb" {
		t.Fatalf("Lookup = %q, want Chris Webb", got)
	}
	if got := m.Lookup("Unknown-Pod"); got != "" {
		t.Fatalf("unmapped pod returned %q, want empty", got)
	}
}

func TestLoadEmptyPathIsOptional(t *testing.T) {
	m, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for a configured but missing map file")
	}
}
