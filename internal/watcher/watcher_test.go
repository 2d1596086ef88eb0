package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"semdiff/internal/analyzer"
	"semdiff/internal/core/config"
	"semdiff/internal/llm"
	"semdiff/internal/parser"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	p, err := parser.NewParser()
	if err != nil {
		t.Fatal(err)
	}
	engine, err := analyzer.NewEngine(config.Default(), p, &llm.Registry{})
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(engine, p, 0, func(analyzer.FileResult) {})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNewWatcherRequiresCallback(t *testing.T) {
	p, err := parser.NewParser()
	if err != nil {
		t.Fatal(err)
	}
	engine, err := analyzer.NewEngine(config.Default(), p, &llm.Registry{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewWatcher(engine, p, 0, nil); err == nil {
		t.Error("nil callback must be rejected")
	}
}

func TestAdvanceTracksContent(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "m.py")

	if err := os.WriteFile(path, []byte("def f():\n    return 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	before, after := w.advance(path)
	if before != "" {
		t.Errorf("first sighting should have empty before, got %q", before)
	}
	if after == "" {
		t.Error("after should carry the current content")
	}

	if err := os.WriteFile(path, []byte("def f():\n    return 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	before, after = w.advance(path)
	if before == after {
		t.Error("second sighting should observe the change")
	}
	if before != "def f():\n    return 1\n" {
		t.Errorf("before should be the previous snapshot, got %q", before)
	}
}

func TestAdvanceDeletedFileReadsEmpty(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.py")

	if err := os.WriteFile(path, []byte("def g():\n    pass\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	w.snapshot(path)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	before, after := w.advance(path)
	if before == "" {
		t.Error("deletion should still report the last snapshot as before")
	}
	if after != "" {
		t.Error("a deleted file must read as empty")
	}
}

func TestWatchRecursiveSnapshotsSupportedFiles(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := w.watchRecursive(dir); err != nil {
		t.Fatal(err)
	}

	w.lastSeenMu.Lock()
	defer w.lastSeenMu.Unlock()
	if _, ok := w.lastSeen[filepath.Join(dir, "a.py")]; !ok {
		t.Error("supported files should be snapshotted during registration")
	}
	if _, ok := w.lastSeen[filepath.Join(dir, "notes.txt")]; ok {
		t.Error("unsupported files should not be snapshotted")
	}
}
