package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAutoWorkers(t *testing.T) {
	if w := AutoWorkers(0); w < 1 {
		t.Errorf("AutoWorkers must return at least 1, got %d", w)
	}
	if w := AutoWorkers(2); w > 2 {
		t.Errorf("Limit 2 exceeded: %d", w)
	}
	t.Logf("Auto-sized workers: %d", AutoWorkers(0))
}

func TestFindLatestDump(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.json")
	os.WriteFile(old, []byte("{}"), 0644)
	os.Chtimes(old, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour))

	newest := filepath.Join(dir, "new.msgpack")
	os.WriteFile(newest, []byte("x"), 0644)

	// Non-dump files are ignored regardless of age.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	got, err := FindLatestDump(dir)
	if err != nil {
		t.Fatalf("FindLatestDump failed: %v", err)
	}
	if got != newest {
		t.Errorf("Expected %s, got %s", newest, got)
	}
}

func TestFindLatestDumpEmpty(t *testing.T) {
	if _, err := FindLatestDump(t.TempDir()); err == nil {
		t.Error("Empty directory should be an error")
	}
}
