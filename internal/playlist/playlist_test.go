package playlist

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestBuild_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "clip.mp4")
	path := filepath.Join(dir, "clip.mp4")

	pl, err := Build(path, false, true, 30*time.Second)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pl.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", pl.Len())
	}
	if pl.CurrentItem() != path {
		t.Fatalf("expected %q, got %q", path, pl.CurrentItem())
	}
}

func TestBuild_DirectoryFiltersUnrecognized(t *testing.T) {
	// Scenario: 3 recognized media files and 2 unrecognized files yield
	// exactly 3 items in filesystem enumeration order.
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp4", "b.webm", "c.gif", "notes.txt", "cover.png")

	pl, err := Build(dir, false, true, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pl.Len() != 3 {
		t.Fatalf("expected 3 items, got %d: %v", pl.Len(), pl.Items)
	}
	want := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.webm"),
		filepath.Join(dir, "c.gif"),
	}
	for i, w := range want {
		if pl.Items[i] != w {
			t.Fatalf("item %d = %q, want %q", i, pl.Items[i], w)
		}
	}
}

func TestBuild_CaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "LOUD.MP4")

	pl, err := Build(dir, false, true, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pl.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", pl.Len())
	}
}

func TestBuild_EmptyDirectoryIsError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "readme.md")

	if _, err := Build(dir, false, true, 0); err == nil {
		t.Fatal("expected error for directory without media files")
	}
}

func TestBuild_MissingPathIsError(t *testing.T) {
	if _, err := Build("/nonexistent/motionwall-test", false, true, 0); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestAdvance_SequentialRoundTrip(t *testing.T) {
	pl := &Playlist{Items: []string{"a", "b", "c", "d"}}
	rng := rand.New(rand.NewSource(1))

	start := pl.Current
	for i := 0; i < pl.Len(); i++ {
		pl.Advance(rng)
	}
	if pl.Current != start {
		t.Fatalf("expected cursor back at %d after %d advances, got %d", start, pl.Len(), pl.Current)
	}
}

func TestAdvance_SingleItemIsNoOp(t *testing.T) {
	pl := &Playlist{Items: []string{"only"}}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5; i++ {
		if got := pl.Advance(rng); got != 0 {
			t.Fatalf("advance of single-item playlist moved cursor to %d", got)
		}
	}
}

func TestAdvance_ShuffleStaysInRange(t *testing.T) {
	pl := &Playlist{Items: []string{"a", "b", "c"}, Shuffle: true}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		idx := pl.Advance(rng)
		if idx < 0 || idx >= pl.Len() {
			t.Fatalf("shuffle produced out-of-range index %d", idx)
		}
	}
}

func TestDue(t *testing.T) {
	now := time.Now()
	pl := &Playlist{Items: []string{"a", "b"}, Duration: 10 * time.Second}

	if pl.Due(now, now.Add(-5*time.Second)) {
		t.Fatal("due before duration elapsed")
	}
	if !pl.Due(now, now.Add(-10*time.Second)) {
		t.Fatal("not due at exactly the duration")
	}

	single := &Playlist{Items: []string{"a"}, Duration: time.Second}
	if single.Due(now, now.Add(-time.Hour)) {
		t.Fatal("single-item playlist must never be due")
	}

	untimed := &Playlist{Items: []string{"a", "b"}}
	if untimed.Due(now, now.Add(-time.Hour)) {
		t.Fatal("zero-duration playlist must never be due")
	}
}

func TestBuildMerged_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp4", "b.webm")
	pathA := filepath.Join(dir, "a.mp4")
	pathB := filepath.Join(dir, "b.webm")

	pl, err := BuildMerged([]string{pathB, pathA}, false, true, 0)
	if err != nil {
		t.Fatalf("BuildMerged: %v", err)
	}
	if pl.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", pl.Len())
	}
	if pl.Items[0] != pathB || pl.Items[1] != pathA {
		t.Fatalf("argument order not preserved: %v", pl.Items)
	}
}

func TestBuildMerged_EmptyIsError(t *testing.T) {
	if _, err := BuildMerged(nil, false, true, 0); err == nil {
		t.Fatal("expected error for empty path list")
	}
}

func TestAssignPerSurface_RoundRobin(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp4", "b.mp4")
	pathA := filepath.Join(dir, "a.mp4")
	pathB := filepath.Join(dir, "b.mp4")

	lists, err := AssignPerSurface([]string{pathA, pathB}, 3, false, true, 0)
	if err != nil {
		t.Fatalf("AssignPerSurface: %v", err)
	}
	if len(lists) != 3 {
		t.Fatalf("expected 3 playlists, got %d", len(lists))
	}
	if lists[0].CurrentItem() != pathA || lists[1].CurrentItem() != pathB || lists[2].CurrentItem() != pathA {
		t.Fatalf("round-robin mismatch: %q %q %q",
			lists[0].CurrentItem(), lists[1].CurrentItem(), lists[2].CurrentItem())
	}
}

func TestAssignPerSurface_Errors(t *testing.T) {
	if _, err := AssignPerSurface(nil, 2, false, true, 0); err == nil {
		t.Fatal("expected error for empty path list")
	}
	if _, err := AssignPerSurface([]string{"x"}, 0, false, true, 0); err == nil {
		t.Fatal("expected error for zero surfaces")
	}
}

func TestSplitPaths(t *testing.T) {
	got := SplitPaths(" a.mp4 ,b.mp4,, c/dir ")
	want := []string{"a.mp4", "b.mp4", "c/dir"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}
