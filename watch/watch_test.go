package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCoalescesChangesIntoOneRefresh(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan string, 8)
	w := New(func(folder string) { changed <- folder })
	defer w.Close()

	w.SetFolder(dir)
	time.Sleep(50 * time.Millisecond) // let the platform watch settle

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "f"+string(rune('0'+i)))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	select {
	case folder := <-changed:
		if folder != dir {
			t.Fatalf("refresh for %q, want %q", folder, dir)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no refresh after file creation burst")
	}

	// The burst debounces into few refreshes, not one per event.
	time.Sleep(400 * time.Millisecond)
	if extra := len(changed); extra > 2 {
		t.Fatalf("%d extra refreshes queued, want <= 2", extra)
	}
}

func TestSetFolderSwitchesWatchTarget(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	changed := make(chan string, 8)
	w := New(func(folder string) { changed <- folder })
	defer w.Close()

	w.SetFolder(dirA)
	w.SetFolder(dirB)
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dirB, "f"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case folder := <-changed:
		if folder != dirB {
			t.Fatalf("refresh for %q, want %q", folder, dirB)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no refresh on the switched folder")
	}
}
