package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcherReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed := make(chan string, 4)
	w.OnChange(func(p string) { changed <- p })
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != w.Path() {
			t.Errorf("callback path = %q, want %q", got, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFileWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed := make(chan string, 4)
	w.OnChange(func(p string) { changed <- p })
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		t.Errorf("unexpected change for %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "photo.png"), 0)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
