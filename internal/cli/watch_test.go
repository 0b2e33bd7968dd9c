package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"
)

func TestFileWatcherBatchesChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "island.toml")
	other := filepath.Join(dir, "notes.txt")
	os.WriteFile(watched, []byte("a"), 0o644)

	fw, err := newFileWatcher([]string{watched}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("newFileWatcher() error = %v", err)
	}
	fw.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- fw.Run(ctx, func(context.Context) { calls <- struct{}{} })
	}()

	os.WriteFile(other, []byte("ignored"), 0o644)
	for _, content := range []string{"b", "c", "d"} {
		os.WriteFile(watched, []byte(content), 0o644)
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no callback after writing the watched file")
	}
	select {
	case <-calls:
		t.Error("a burst of writes should trigger a single callback")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "base.json")
	os.WriteFile(watched, []byte("{}"), 0o644)

	fw, err := newFileWatcher([]string{watched}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("newFileWatcher() error = %v", err)
	}
	fw.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644)
	called := false
	if err := fw.Run(ctx, func(context.Context) { called = true }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if called {
		t.Error("changes to unwatched files should not trigger a run")
	}
}

func TestNewFileWatcherMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := newFileWatcher([]string{filepath.Join(t.TempDir(), "missing", "a.toml")}, log.New(io.Discard))
	if err == nil {
		t.Error("watching a file in a missing directory should fail")
	}
}
