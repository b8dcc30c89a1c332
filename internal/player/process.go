package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/motionwall/internal/logger"
)

const (
	// termWait bounds how long Terminate waits after SIGTERM before
	// escalating to SIGKILL.
	termWait = 500 * time.Millisecond

	// termPoll is the liveness re-check interval inside that wait.
	termPoll = 50 * time.Millisecond
)

// knownPlayerBinaries are accepted by the best-effort identity check.
var knownPlayerBinaries = []string{"mpv", "mplayer", "vlc", "cvlc"}

// Process is one owned external player process. Ownership is exclusive to
// the supervisor that spawned it; it is never aliased.
type Process struct {
	Pid       int
	Surface   int
	Active    bool
	StartedAt time.Time
	IPCSocket string

	cmd  *exec.Cmd
	done chan struct{}
}

// Spawn starts the player for a surface. The process runs in its own
// process group so supervisor-directed signals never leak to it by
// accident, and its output is discarded unless debug logging is on.
func Spawn(opts SpawnOptions, surfaceIdx int, debug bool) (*Process, error) {
	kind := DetectKind(opts.Player)
	if opts.Paused && !kind.SupportsPausedSpawn() {
		return nil, fmt.Errorf("player %s cannot start paused", opts.Player)
	}

	args := BuildArgs(kind, opts)
	cmd := exec.Command(opts.Player, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if debug {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s for surface %d: %w", opts.Player, surfaceIdx, err)
	}

	p := &Process{
		Pid:       cmd.Process.Pid,
		Surface:   surfaceIdx,
		Active:    true,
		StartedAt: time.Now(),
		IPCSocket: opts.IPCSocket,
		cmd:       cmd,
		done:      make(chan struct{}),
	}

	// Reap asynchronously; the coordination loop never blocks on Wait.
	// The IPC socket is per spawn, so it is unlinked here and not left
	// behind by players that never shut down cleanly.
	go func() {
		cmd.Wait()
		if p.IPCSocket != "" {
			os.Remove(p.IPCSocket)
		}
		close(p.done)
	}()

	logger.Debug("player started", "player", opts.Player, "pid", p.Pid, "surface", surfaceIdx, "path", opts.Path)
	return p, nil
}

// Exited reports whether the process has been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// IsHealthy checks liveness (authoritative) and identity (best-effort).
// An identity mismatch is logged but never by itself reports unhealthy,
// so permission-restricted /proc reads cannot trigger false restarts.
func (p *Process) IsHealthy() bool {
	if p == nil || !p.Active {
		return false
	}
	if p.Exited() {
		return false
	}
	if err := unix.Kill(p.Pid, 0); err != nil {
		return false
	}

	if name, err := processExecutable(p.Pid); err == nil && name != "" {
		if !isKnownPlayer(name) {
			logger.Warn("pid no longer names a known player", "pid", p.Pid, "exe", name)
		}
	}
	return true
}

// Terminate stops the process: graceful signal to its process group, a
// bounded wait, then a forced kill. The process is marked inactive no
// matter what the signals achieved; cleanup is best-effort and never
// blocks indefinitely.
func (p *Process) Terminate() {
	if p == nil || !p.Active {
		return
	}
	p.Active = false

	if err := unix.Kill(-p.Pid, unix.SIGTERM); err != nil {
		// Group may be gone already; fall through to the liveness checks.
		logger.Debug("sigterm failed", "pid", p.Pid, "err", err)
	}

	deadline := time.Now().Add(termWait)
	for time.Now().Before(deadline) {
		if p.Exited() {
			return
		}
		time.Sleep(termPoll)
	}

	if !p.Exited() {
		logger.Debug("player ignored sigterm, killing", "pid", p.Pid)
		unix.Kill(-p.Pid, unix.SIGKILL)
		select {
		case <-p.done:
		case <-time.After(termWait):
			// Abandoned; the reaper goroutine will collect it eventually.
			logger.Warn("player did not exit after sigkill", "pid", p.Pid)
		}
	}
}

// Pause suspends playback: via the mpv IPC socket when available,
// otherwise by stopping the process group.
func (p *Process) Pause() {
	if p == nil || !p.Active {
		return
	}
	if p.IPCSocket != "" {
		if err := setPaused(p.IPCSocket, true); err == nil {
			return
		}
	}
	unix.Kill(-p.Pid, unix.SIGSTOP)
}

// Resume is the inverse of Pause.
func (p *Process) Resume() {
	if p == nil || !p.Active {
		return
	}
	if p.IPCSocket != "" {
		if err := setPaused(p.IPCSocket, false); err == nil {
			return
		}
	}
	unix.Kill(-p.Pid, unix.SIGCONT)
}

// processExecutable resolves /proc/<pid>/exe, falling back to the first
// cmdline token when the symlink is unreadable.
func processExecutable(pid int) (string, error) {
	if target, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
		return filepath.Base(target), nil
	}

	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return "", err
	}
	fields := strings.Split(string(data), "\x00")
	if len(fields) == 0 || fields[0] == "" {
		return "", fmt.Errorf("empty cmdline for pid %d", pid)
	}
	return filepath.Base(fields[0]), nil
}

func isKnownPlayer(name string) bool {
	for _, known := range knownPlayerBinaries {
		if strings.Contains(name, known) {
			return true
		}
	}
	return false
}
