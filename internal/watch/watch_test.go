package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	w := New([]string{"/project/composer.lock", "/project/./composer.json"}, 0, nil)

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"lock write", fsnotify.Event{Name: "/project/composer.lock", Op: fsnotify.Write}, true},
		{"manifest create", fsnotify.Event{Name: "/project/composer.json", Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: "/project/composer.lock", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/project/composer.lock", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/project/modules.php", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestNewDeduplicatesDirectories(t *testing.T) {
	w := New([]string{"/a/x.lock", "/a/x.json", "/b/y.json"}, 0, nil)
	if len(w.dirs) != 2 {
		t.Errorf("dirs = %v, want 2 entries", w.dirs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := New([]string{filepath.Join(dir, "composer.lock")}, 0, func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-w.Ready()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, "composer.lock")

	var calls atomic.Int32
	called := make(chan struct{}, 1)
	w := New([]string{lock}, 20*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	<-w.Ready()

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lock, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not called after the lock file changed")
	}
	if calls.Load() < 1 {
		t.Error("expected at least one call")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing", "composer.lock")}, 0, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}
