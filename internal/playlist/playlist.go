// Package playlist holds the content schedule: which media items exist,
// which one is current, and when the current one is due to change.
package playlist

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxItems caps a directory scan so a pathological media directory cannot
// blow up memory or startup time.
const maxItems = 1024

// mediaExtensions are the recognized content file types. Matching is
// case-insensitive on the extension only.
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".webm": true,
	".gif":  true,
	".mp3":  true,
	".wav":  true,
}

// Playlist is an ordered sequence of media paths with a cursor. The cursor
// only moves through Advance; shuffle jumps are the sole exception to the
// monotonic wrap-around order.
type Playlist struct {
	Items    []string
	Current  int
	Shuffle  bool
	Loop     bool
	Duration time.Duration
}

// Build creates a playlist from a single file or a directory. A directory
// is scanned non-recursively in filesystem enumeration order for recognized
// media extensions. An empty result after a directory scan is a content
// error, not an empty playlist.
func Build(path string, shuffle, loop bool, duration time.Duration) (*Playlist, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access media path %s: %w", path, err)
	}

	pl := &Playlist{
		Shuffle:  shuffle,
		Loop:     loop,
		Duration: duration,
	}

	if !info.IsDir() {
		pl.Items = []string{path}
		return pl, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media directory %s: %w", path, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		pl.Items = append(pl.Items, filepath.Join(path, entry.Name()))
		if len(pl.Items) >= maxItems {
			break
		}
	}

	if len(pl.Items) == 0 {
		return nil, fmt.Errorf("no compatible media files found in %s", path)
	}
	return pl, nil
}

// Advance moves the cursor to the next item and returns the new index.
// A playlist of one item (or fewer) is never advanced.
func (p *Playlist) Advance(rng *rand.Rand) int {
	if len(p.Items) <= 1 {
		return p.Current
	}
	if p.Shuffle {
		p.Current = rng.Intn(len(p.Items))
	} else {
		p.Current = (p.Current + 1) % len(p.Items)
	}
	return p.Current
}

// CurrentItem returns the path at the cursor.
func (p *Playlist) CurrentItem() string {
	if len(p.Items) == 0 {
		return ""
	}
	return p.Items[p.Current]
}

// Due reports whether the item shown since last should be replaced at now.
// Single-item playlists and zero durations are never due.
func (p *Playlist) Due(now, last time.Time) bool {
	if len(p.Items) <= 1 || p.Duration <= 0 {
		return false
	}
	return now.Sub(last) >= p.Duration
}

// Len returns the item count.
func (p *Playlist) Len() int {
	return len(p.Items)
}

// BuildMerged concatenates the items of every path into one shared
// playlist, preserving argument order and keeping the overall item cap.
func BuildMerged(paths []string, shuffle, loop bool, duration time.Duration) (*Playlist, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one media path is required")
	}

	merged := &Playlist{
		Shuffle:  shuffle,
		Loop:     loop,
		Duration: duration,
	}
	for _, path := range paths {
		pl, err := Build(path, shuffle, loop, duration)
		if err != nil {
			return nil, err
		}
		merged.Items = append(merged.Items, pl.Items...)
		if len(merged.Items) >= maxItems {
			merged.Items = merged.Items[:maxItems]
			break
		}
	}
	return merged, nil
}

// AssignPerSurface builds one playlist per surface from the given paths,
// assigning paths round-robin when there are fewer paths than surfaces.
func AssignPerSurface(paths []string, surfaces int, shuffle, loop bool, duration time.Duration) ([]*Playlist, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("per-surface mode requires at least one media path")
	}
	if surfaces <= 0 {
		return nil, fmt.Errorf("per-surface mode requires at least one surface")
	}

	lists := make([]*Playlist, 0, surfaces)
	for i := 0; i < surfaces; i++ {
		pl, err := Build(paths[i%len(paths)], shuffle, loop, duration)
		if err != nil {
			return nil, fmt.Errorf("surface %d: %w", i, err)
		}
		lists = append(lists, pl)
	}
	return lists, nil
}

// SplitPaths parses a comma-separated media path argument, preserving order
// and dropping empty segments.
func SplitPaths(arg string) []string {
	parts := strings.Split(arg, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Extensions returns the recognized media extensions, sorted, for
// diagnostics and usage text.
func Extensions() []string {
	exts := make([]string, 0, len(mediaExtensions))
	for ext := range mediaExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
