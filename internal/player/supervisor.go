package player

import (
	"time"

	"github.com/1broseidon/motionwall/internal/logger"
)

// graceWindow shields a freshly spawned player from the health check.
// Players need a moment to open their window; restarting inside that
// window would loop forever on a player that is merely slow.
const graceWindow = 2 * time.Second

// SpawnFunc starts a replacement player for a surface. The coordination
// loop supplies it so the supervisor stays ignorant of playlists and
// surface geometry.
type SpawnFunc func(surfaceIdx int) (*Process, error)

// Supervisor tracks at most one primary player per surface and restarts
// the ones that die. It is not safe for concurrent use; the coordination
// loop is its only caller.
type Supervisor struct {
	procs []*Process
}

func NewSupervisor(surfaces int) *Supervisor {
	return &Supervisor{procs: make([]*Process, surfaces)}
}

// Resize adjusts the tracked surface count after a topology change.
// Players on surfaces that no longer exist are terminated.
func (s *Supervisor) Resize(surfaces int) {
	for i := surfaces; i < len(s.procs); i++ {
		s.Terminate(i)
	}
	next := make([]*Process, surfaces)
	copy(next, s.procs)
	s.procs = next
}

// Primary returns the tracked player for a surface, or nil.
func (s *Supervisor) Primary(idx int) *Process {
	if idx < 0 || idx >= len(s.procs) {
		return nil
	}
	return s.procs[idx]
}

// SetPrimary installs a player as the surface's primary, terminating any
// previous holder so a surface never has two active primaries.
func (s *Supervisor) SetPrimary(idx int, p *Process) {
	if idx < 0 || idx >= len(s.procs) {
		if p != nil {
			p.Terminate()
		}
		return
	}
	if old := s.procs[idx]; old != nil && old != p {
		old.Terminate()
	}
	s.procs[idx] = p
}

// Terminate stops and forgets the surface's player. The slot is cleared
// even if the process ignored every signal.
func (s *Supervisor) Terminate(idx int) {
	if idx < 0 || idx >= len(s.procs) {
		return
	}
	if p := s.procs[idx]; p != nil {
		p.Terminate()
	}
	s.procs[idx] = nil
}

// TerminateAll stops every tracked player.
func (s *Supervisor) TerminateAll() {
	for i := range s.procs {
		s.Terminate(i)
	}
}

// PauseAll suspends playback on every tracked player.
func (s *Supervisor) PauseAll() {
	for _, p := range s.procs {
		p.Pause()
	}
}

// ResumeAll resumes playback on every tracked player.
func (s *Supervisor) ResumeAll() {
	for _, p := range s.procs {
		p.Resume()
	}
}

// CheckAndRestart sweeps every surface: dead players outside their grace
// window are cleared and respawned, but only on surfaces valid reports
// as still usable. Spawn failures leave the slot empty for the next
// sweep rather than aborting the run.
func (s *Supervisor) CheckAndRestart(valid func(surfaceIdx int) bool, spawn SpawnFunc) {
	for i, p := range s.procs {
		if p != nil {
			if time.Since(p.StartedAt) < graceWindow {
				continue
			}
			if p.IsHealthy() {
				continue
			}
			logger.Warn("player died, restarting", "pid", p.Pid, "surface", i)
			p.Terminate()
			s.procs[i] = nil
		}

		if !valid(i) {
			continue
		}
		np, err := spawn(i)
		if err != nil {
			logger.Error("failed to restart player", "surface", i, "err", err)
			continue
		}
		s.procs[i] = np
	}
}
