// Package player owns the external media-player processes: argument
// construction, spawning, health checking, termination and restart.
package player

import (
	"fmt"
	"strings"
)

// Kind is a recognized media player family. Argument syntax and
// capabilities differ per family.
type Kind int

const (
	KindGeneric Kind = iota
	KindMPV
	KindMPlayer
	KindVLC
)

// DetectKind classifies a player binary by name. Substring matching keeps
// wrapper names like "mpv-wrapped" or absolute paths working.
func DetectKind(player string) Kind {
	base := strings.ToLower(player)
	switch {
	case strings.Contains(base, "mplayer"):
		// Checked before mpv: "mplayer" contains no "mpv" but keep the
		// more specific name first regardless.
		return KindMPlayer
	case strings.Contains(base, "mpv"):
		return KindMPV
	case strings.Contains(base, "vlc"):
		return KindVLC
	}
	return KindGeneric
}

func (k Kind) String() string {
	switch k {
	case KindMPV:
		return "mpv"
	case KindMPlayer:
		return "mplayer"
	case KindVLC:
		return "vlc"
	}
	return "generic"
}

// SupportsPausedSpawn reports whether the player can start paused with its
// window already rendered, which the transition engine needs for seamless
// swaps. Only mpv offers this.
func (k Kind) SupportsPausedSpawn() bool {
	return k == KindMPV
}

// SupportsIPC reports whether the player exposes a JSON IPC socket for
// runtime control (pause/resume).
func (k Kind) SupportsIPC() bool {
	return k == KindMPV
}

// SpawnOptions describe one player invocation.
type SpawnOptions struct {
	Player    string // binary name or path
	Window    uint32 // target surface handle
	Loop      bool   // loop the file itself
	Paused    bool   // start paused (transition preload; mpv only)
	IPCSocket string // mpv JSON IPC socket path; empty disables
	Path      string // content path, always the final argument
}

// BuildArgs builds the player-specific argument list: target surface
// handle, muted audio, loop flag, scale-to-fill, quiet/no-OSD flags, and
// the content path last.
func BuildArgs(kind Kind, opts SpawnOptions) []string {
	wid := fmt.Sprintf("0x%x", opts.Window)

	var args []string
	switch kind {
	case KindMPV:
		loop := "no"
		if opts.Loop {
			loop = "inf"
		}
		args = []string{
			"--wid", wid,
			"--really-quiet",
			"--no-audio",
			"--no-osc",
			"--no-input-default-bindings",
			"--loop-file=" + loop,
			"--panscan=1.0",
			"--keepaspect=no",
		}
		if opts.Paused {
			args = append(args, "--pause")
		}
		if opts.IPCSocket != "" {
			args = append(args, "--input-ipc-server="+opts.IPCSocket)
		}

	case KindMPlayer:
		args = []string{
			"-wid", wid,
			"-nosound",
			"-really-quiet",
			"-panscan", "1.0",
			"-framedrop",
		}
		if opts.Loop {
			args = append(args, "-loop", "0")
		}

	case KindVLC:
		args = []string{
			"--intf", "dummy",
			"--no-audio",
			"--no-video-title-show",
			"--drawable-xid", wid,
		}
		if opts.Loop {
			args = append(args, "--loop")
		}
	}

	return append(args, opts.Path)
}
