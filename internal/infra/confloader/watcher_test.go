package confloader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewWatcher_NonexistentDir(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/config.yaml"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var (
		mu      sync.Mutex
		changed []string
	)
	w.OnChange(func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	})
	w.StartAsync()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(changed)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changed) == 0 {
		t.Fatal("expected a change notification")
	}
	for _, p := range changed {
		if filepath.Base(p) != "config.yaml" {
			t.Errorf("unexpected notification for %s", p)
		}
	}
}
