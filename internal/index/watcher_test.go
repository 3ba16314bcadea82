package index

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/folio/internal/storage"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, dir, name string) *atomic.Int32 {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var calls atomic.Int32
	go Watch(ctx, dir, name, 50*time.Millisecond, quietLogger(), func() {
		calls.Add(1)
	})
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatcher_ExternalWriteReported(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, "notes.csv")

	_ = os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("title\nx\n"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "write to watched file not reported")
}

func TestWatcher_AtomicReplaceReported(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	calls := startWatch(t, dir, "notes.csv")

	if err := fs.Write("notes.csv", []byte("title\n")); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "atomic replace not reported")
}

func TestWatcher_BurstDebounced(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, "notes.csv")

	path := filepath.Join(dir, "notes.csv")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "burst not reported")
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1 for a single burst", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, "notes.csv")

	_ = os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d, want 0", n)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, "notes.csv", 0, quietLogger(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), "notes.csv", 0, quietLogger(), nil)
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
