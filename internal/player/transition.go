package player

import (
	"github.com/1broseidon/motionwall/internal/logger"
)

// Transition implements seamless content swaps: the next item is preloaded
// in a paused player behind the current one, then the swap is a
// resume-plus-terminate instead of a kill-spawn gap. Requires a player
// that can start paused; anything else degrades to the plain swap.
type Transition struct {
	enabled  bool
	preloads []*Process
}

// NewTransition decides once, at startup, whether seamless swaps are
// possible. Downgrading is deterministic and logged, never silent.
func NewTransition(requested bool, kind Kind, surfaces int) *Transition {
	enabled := requested && kind.SupportsPausedSpawn()
	if requested && !enabled {
		logger.Warn("transitions requested but player cannot start paused, using plain swaps", "player", kind.String())
	}
	return &Transition{
		enabled:  enabled,
		preloads: make([]*Process, surfaces),
	}
}

// Enabled reports whether seamless swaps are in effect.
func (t *Transition) Enabled() bool {
	return t.enabled
}

// Resize adjusts the preload slots after a topology change, discarding
// preloads for surfaces that no longer exist.
func (t *Transition) Resize(surfaces int) {
	for i := surfaces; i < len(t.preloads); i++ {
		t.discard(i)
	}
	next := make([]*Process, surfaces)
	copy(next, t.preloads)
	t.preloads = next
}

// Preload starts the next item paused on the surface. A stale preload
// from an earlier cycle is discarded first so at most one preload exists
// per surface.
func (t *Transition) Preload(idx int, opts SpawnOptions, debug bool) error {
	if !t.enabled || idx < 0 || idx >= len(t.preloads) {
		return nil
	}
	t.discard(idx)

	opts.Paused = true
	p, err := Spawn(opts, idx, debug)
	if err != nil {
		return err
	}
	t.preloads[idx] = p
	return nil
}

// Commit swaps the preloaded player in as the surface's primary: resume
// the preload, then retire the old primary. Returns false when no live
// preload exists, in which case the caller falls back to a plain swap.
func (t *Transition) Commit(idx int, sup *Supervisor) bool {
	if !t.enabled || idx < 0 || idx >= len(t.preloads) {
		return false
	}
	p := t.preloads[idx]
	t.preloads[idx] = nil
	if p == nil || !p.IsHealthy() {
		if p != nil {
			logger.Warn("preloaded player died before commit, falling back", "surface", idx)
			p.Terminate()
		}
		return false
	}

	p.Resume()
	sup.SetPrimary(idx, p)
	logger.Debug("transition committed", "surface", idx, "pid", p.Pid)
	return true
}

// DiscardAll drops every outstanding preload, for shutdown and topology
// rebuilds.
func (t *Transition) DiscardAll() {
	for i := range t.preloads {
		t.discard(i)
	}
}

func (t *Transition) discard(idx int) {
	if p := t.preloads[idx]; p != nil {
		p.Terminate()
		t.preloads[idx] = nil
	}
}
