package player

import (
	"strings"
	"testing"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		player string
		want   Kind
	}{
		{"mpv", KindMPV},
		{"/usr/bin/mpv", KindMPV},
		{"mpv-wrapped", KindMPV},
		{"mplayer", KindMPlayer},
		{"/usr/local/bin/mplayer", KindMPlayer},
		{"vlc", KindVLC},
		{"cvlc", KindVLC},
		{"xwinwrap", KindGeneric},
		{"", KindGeneric},
	}

	for _, tt := range tests {
		if got := DetectKind(tt.player); got != tt.want {
			t.Errorf("DetectKind(%q) = %v, want %v", tt.player, got, tt.want)
		}
	}
}

func TestBuildArgs_MPV(t *testing.T) {
	opts := SpawnOptions{
		Player: "mpv",
		Window: 0x2a00003,
		Loop:   true,
		Path:   "/media/bg.mp4",
	}
	args := BuildArgs(KindMPV, opts)

	if args[len(args)-1] != "/media/bg.mp4" {
		t.Errorf("content path must be the final argument, got %q", args[len(args)-1])
	}
	wantFlags := []string{"--wid", "0x2a00003", "--no-audio", "--loop-file=inf", "--panscan=1.0", "--keepaspect=no"}
	joined := strings.Join(args, " ")
	for _, f := range wantFlags {
		if !strings.Contains(joined, f) {
			t.Errorf("mpv args missing %q in %q", f, joined)
		}
	}
	if strings.Contains(joined, "--pause") {
		t.Error("mpv args should not contain --pause without Paused")
	}
}

func TestBuildArgs_MPVPausedWithIPC(t *testing.T) {
	opts := SpawnOptions{
		Player:    "mpv",
		Window:    1,
		Paused:    true,
		IPCSocket: "/run/user/1000/motionwall-player-0.sock",
		Path:      "clip.webm",
	}
	joined := strings.Join(BuildArgs(KindMPV, opts), " ")

	if !strings.Contains(joined, "--pause") {
		t.Error("paused spawn must pass --pause")
	}
	if !strings.Contains(joined, "--input-ipc-server=/run/user/1000/motionwall-player-0.sock") {
		t.Error("IPC socket flag missing")
	}
	if !strings.Contains(joined, "--loop-file=no") {
		t.Error("non-looping spawn must pass --loop-file=no")
	}
}

func TestBuildArgs_MPlayer(t *testing.T) {
	opts := SpawnOptions{Player: "mplayer", Window: 0xff, Loop: true, Path: "a.avi"}
	args := BuildArgs(KindMPlayer, opts)
	joined := strings.Join(args, " ")

	for _, f := range []string{"-wid 0xff", "-nosound", "-panscan 1.0", "-loop 0"} {
		if !strings.Contains(joined, f) {
			t.Errorf("mplayer args missing %q in %q", f, joined)
		}
	}
	if args[len(args)-1] != "a.avi" {
		t.Errorf("content path must be last, got %q", args[len(args)-1])
	}
}

func TestBuildArgs_VLC(t *testing.T) {
	opts := SpawnOptions{Player: "vlc", Window: 0x10, Loop: true, Path: "b.mkv"}
	joined := strings.Join(BuildArgs(KindVLC, opts), " ")

	for _, f := range []string{"--intf dummy", "--no-audio", "--drawable-xid 0x10", "--loop"} {
		if !strings.Contains(joined, f) {
			t.Errorf("vlc args missing %q in %q", f, joined)
		}
	}
}

func TestBuildArgs_GenericPathOnly(t *testing.T) {
	args := BuildArgs(KindGeneric, SpawnOptions{Player: "custom", Path: "x.gif"})
	if len(args) != 1 || args[0] != "x.gif" {
		t.Errorf("generic args = %v, want just the content path", args)
	}
}

func TestKindCapabilities(t *testing.T) {
	if !KindMPV.SupportsPausedSpawn() || !KindMPV.SupportsIPC() {
		t.Error("mpv must support paused spawn and IPC")
	}
	for _, k := range []Kind{KindMPlayer, KindVLC, KindGeneric} {
		if k.SupportsPausedSpawn() {
			t.Errorf("%v must not support paused spawn", k)
		}
		if k.SupportsIPC() {
			t.Errorf("%v must not support IPC", k)
		}
	}
}
