package confloader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := NewWatcher(WithWatcherLogger(logger))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.fsw == nil || w.done == nil || w.debounce != DefaultDebounce {
		t.Error("NewWatcher() left fields unset")
	}
	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/path/linekv.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_OnChange_MultipleCallbacks(t *testing.T) {
	w := newTestWatcher(t)

	var count int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		w.OnChange(func(path string) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	w.notify("/test/path")

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("callbacks called %d times, want 3", count)
	}
}

func TestWatcher_Notify_CallbackRegistersCallback(t *testing.T) {
	w := newTestWatcher(t)

	var calls []string
	w.OnChange(func(path string) {
		calls = append(calls, "first")
		w.OnChange(func(path string) {
			calls = append(calls, "late")
		})
	})

	w.notify("/test/path")
	if len(calls) != 1 || calls[0] != "first" {
		t.Fatalf("first notify calls = %v, want [first]", calls)
	}

	calls = nil
	w.notify("/test/path")
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "late" {
		t.Errorf("second notify calls = %v, want [first late]", calls)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	time.Sleep(20 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "linekv.yaml")
	otherFile := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w := newTestWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	// Other files in the directory are ignored.
	if err := os.WriteFile(otherFile, []byte("x: 1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case path := <-changed:
		t.Fatalf("callback fired for unwatched file %q", path)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case path := <-changed:
		if filepath.Base(path) != "linekv.yaml" {
			t.Errorf("callback path = %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "linekv.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher(
		WithWatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithDebounce(300*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var mu sync.Mutex
	calls := 0
	w.OnChange(func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	for _, level := range []string{"debug", "warn", "error"} {
		if err := os.WriteFile(configFile, []byte("log:\n  level: "+level+"\n"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("callbacks = %d, want 1 for a burst of writes", calls)
	}
}
