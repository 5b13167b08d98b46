package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}
	return w
}

// waitFor reads changes until one ends in suffix.
func waitFor(t *testing.T, w *Watcher, suffix string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case name, ok := <-w.Changed():
			if !ok {
				t.Fatal("watcher closed")
			}
			if strings.HasSuffix(name, suffix) {
				return
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", suffix)
		}
	}
}

func TestWatchWrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "views", "users"), 0o755); err != nil {
		t.Fatal(err)
	}
	w := newWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "views", "users", "show.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, "views/users/show.html")
}

func TestWatchNewDirectory(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	if err := os.Mkdir(filepath.Join(dir, "layouts"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, "layouts")

	if err := os.WriteFile(filepath.Join(dir, "layouts", "main.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, "layouts/main.html")
}

func TestWatchAddTwice(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)
	if err := w.Add(dir); err != nil {
		t.Errorf("second Add() error = %v", err)
	}
	if err := w.Add(filepath.Join(dir, "missing")); err == nil {
		t.Error("Add(missing) error = nil")
	}
}

func TestRunStopsOnClose(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)

	changes := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		w.Run(context.Background(), func(name string) { changes <- name }, nil)
		close(done)
	}()

	if err := os.WriteFile(filepath.Join(dir, "a.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case name := <-changes:
		if !strings.HasSuffix(name, "a.html") {
			t.Errorf("change = %q, want a.html", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	w.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	w := newWatcher(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, func(string) {}, func(error) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
