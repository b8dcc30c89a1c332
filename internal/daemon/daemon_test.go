package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/motionwall/internal/config"
	"github.com/1broseidon/motionwall/internal/player"
	"github.com/1broseidon/motionwall/internal/playlist"
	"github.com/1broseidon/motionwall/internal/x11"
)

// testDaemon builds a loop-ready daemon around one fake surface and a
// stand-in player, so health and reload logic run without a display.
func testDaemon(t *testing.T) *Daemon {
	t.Helper()
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("/bin/sleep not available")
	}
	cfg := config.DefaultConfig()
	cfg.Player = "/bin/sleep"
	d := &Daemon{
		cfg:         cfg,
		kind:        player.DetectKind(cfg.Player),
		surfaces:    []*x11.Surface{{Window: 1, Width: 1920, Height: 1080}},
		playlists:   []*playlist.Playlist{{Items: []string{"30"}}},
		sup:         player.NewSupervisor(1),
		trans:       player.NewTransition(false, player.KindGeneric, 1),
		lastAdvance: []time.Time{time.Now()},
	}
	t.Cleanup(d.sup.TerminateAll)
	return d
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New() without config should fail")
	}
	if _, err := New(Options{Config: config.DefaultConfig()}); err == nil {
		t.Error("New() without media paths should fail")
	}

	cfg := config.DefaultConfig()
	cfg.Duration = -1
	if _, err := New(Options{Config: cfg, MediaPaths: []string{"a.mp4"}}); err == nil {
		t.Error("New() with invalid config should fail")
	}

	d, err := New(Options{Config: config.DefaultConfig(), MediaPaths: []string{"a.mp4"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.kind.String() != "mpv" {
		t.Errorf("kind = %v, want mpv", d.kind)
	}
}

func TestSelectMonitors(t *testing.T) {
	mons := []x11.Monitor{
		{Name: "HDMI-1", Width: 1920, Height: 1080},
		{Name: "DP-1", X: 1920, Width: 2560, Height: 1440, Primary: true},
	}

	if got := selectMonitors(mons, 1, true); len(got) != 2 {
		t.Errorf("multi-monitor should keep all, got %d", len(got))
	}

	got := selectMonitors(mons, 1, false)
	if len(got) != 1 || got[0].Name != "DP-1" {
		t.Errorf("single-monitor should keep the primary, got %v", got)
	}

	// Out-of-range primary falls back to the first monitor.
	got = selectMonitors(mons, 5, false)
	if len(got) != 1 || got[0].Name != "HDMI-1" {
		t.Errorf("bad primary index should fall back to index 0, got %v", got)
	}

	if got := selectMonitors(nil, 0, false); len(got) != 0 {
		t.Errorf("no monitors in should be no monitors out, got %v", got)
	}
}

func TestTickSleep(t *testing.T) {
	now := time.Now()

	if got := tickSleep(now, time.Time{}); got != baseTick {
		t.Errorf("no schedule: sleep = %v, want %v", got, baseTick)
	}
	if got := tickSleep(now, now.Add(-time.Second)); got != minTick {
		t.Errorf("overdue: sleep = %v, want %v", got, minTick)
	}
	if got := tickSleep(now, now.Add(time.Minute)); got != baseTick {
		t.Errorf("far out: sleep = %v, want cap %v", got, baseTick)
	}
	if got := tickSleep(now, now.Add(20*time.Millisecond)); got != minTick {
		t.Errorf("imminent: sleep = %v, want floor %v", got, minTick)
	}

	got := tickSleep(now, now.Add(120*time.Millisecond))
	if got != 30*time.Millisecond {
		t.Errorf("mid-range: sleep = %v, want 30ms", got)
	}
}

func TestResizeTimes(t *testing.T) {
	now := time.Now()
	old := now.Add(-time.Minute)

	ts := resizeTimes([]time.Time{old}, 3, now)
	if len(ts) != 3 {
		t.Fatalf("len = %d, want 3", len(ts))
	}
	if !ts[0].Equal(old) {
		t.Error("existing timestamp lost")
	}
	if !ts[1].Equal(now) || !ts[2].Equal(now) {
		t.Error("new slots not seeded with now")
	}

	ts = resizeTimes(ts, 1, now)
	if len(ts) != 1 || !ts[0].Equal(old) {
		t.Errorf("shrink mangled timestamps: %v", ts)
	}
}

func TestHealthCheckRearmsFlaggedSurface(t *testing.T) {
	d := testDaemon(t)
	d.surfaces[0].NeedsRestart = true

	d.healthCheck(time.Now())

	if d.sup.Primary(0) == nil {
		t.Fatal("surface with a valid handle and no player was not re-armed")
	}
	if d.surfaces[0].NeedsRestart {
		t.Error("restart flag not cleared after successful respawn")
	}
}

func TestHealthCheckRestartsHealthyFlaggedPlayer(t *testing.T) {
	d := testDaemon(t)

	d.healthCheck(time.Now())
	old := d.sup.Primary(0)
	if old == nil {
		t.Fatal("empty slot was not armed")
	}

	d.surfaces[0].NeedsRestart = true
	d.lastHealth = time.Time{}
	d.healthCheck(time.Now())

	replacement := d.sup.Primary(0)
	if replacement == nil {
		t.Fatal("flagged surface lost its player")
	}
	if replacement.Pid == old.Pid {
		t.Error("healthy flagged player was not replaced")
	}
	if old.Active {
		t.Error("old player still active after flagged restart")
	}
	if d.surfaces[0].NeedsRestart {
		t.Error("restart flag not cleared")
	}
}

func TestHealthCheckRearmsEmptyUnflaggedSlot(t *testing.T) {
	d := testDaemon(t)

	d.healthCheck(time.Now())

	if d.sup.Primary(0) == nil {
		t.Fatal("empty slot on a valid surface was not armed")
	}
}

func TestReloadConfigUsesConfiguredPath(t *testing.T) {
	d := testDaemon(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("playlist_duration: 60\nplaylist_shuffle: true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	d.cfgPath = path

	if err := d.reloadConfig(); err != nil {
		t.Fatalf("reloadConfig() error = %v", err)
	}
	if d.cfg.Duration != 60 {
		t.Errorf("Duration = %d, want 60 from the configured path", d.cfg.Duration)
	}
	if d.playlists[0].Duration != 60*time.Second {
		t.Errorf("playlist Duration = %v, want 60s", d.playlists[0].Duration)
	}
	if !d.playlists[0].Shuffle {
		t.Error("shuffle change not applied to playlist")
	}
}
