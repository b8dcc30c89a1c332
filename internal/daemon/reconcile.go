package daemon

import (
	"time"

	"github.com/1broseidon/motionwall/internal/logger"
	"github.com/1broseidon/motionwall/internal/x11"
)

// maybeReconcile runs the topology poll on its interval and, once the
// dirty mark has cooled down, a full reconciliation.
func (d *Daemon) maybeReconcile(now time.Time) {
	if now.Sub(d.lastPoll) >= topologyPollInterval {
		d.lastPoll = now
		if d.topologyDrifted() {
			d.markTopologyDirty("topology poll")
		}
	}

	if !d.topologyDirty {
		return
	}
	if now.Sub(d.dirtySince) < reconcileCooldown {
		return
	}
	d.topologyDirty = false
	d.reconcile(now)
}

// topologyDrifted re-detects monitors and compares against the set the
// surfaces were built for. Detection failure is not drift; the connection
// check decides whether the display is gone.
func (d *Daemon) topologyDrifted() bool {
	all, primary, err := d.conn.DetectMonitors()
	if err != nil {
		logger.Warn("monitor detection failed during poll", "err", err)
		return false
	}
	effective := selectMonitors(all, primary, d.cfg.MultiMonitor)
	if x11.MonitorsChanged(d.monitors, effective) {
		return true
	}
	for _, s := range d.surfaces {
		if !s.Valid() {
			return true
		}
	}
	return false
}

// reconcile rebuilds the surface set against the current monitor
// topology: surfaces are resized in place where possible, created or
// destroyed where the monitor count changed, re-hinted, and their
// players restarted only where the render target actually moved.
func (d *Daemon) reconcile(now time.Time) {
	all, primary, err := d.conn.DetectMonitors()
	if err != nil {
		logger.Error("monitor detection failed, keeping current layout", "err", err)
		return
	}
	effective := selectMonitors(all, primary, d.cfg.MultiMonitor)
	logger.Info("reconciling monitor topology", "monitors", len(effective))

	// Preloads target old windows and old items; never promote them
	// across a topology change.
	d.trans.DiscardAll()

	// Retire surfaces beyond the new monitor count, players first.
	for i := len(effective); i < len(d.surfaces); i++ {
		d.sup.Terminate(i)
		d.conn.DestroySurface(d.surfaces[i])
	}
	if len(d.surfaces) > len(effective) {
		d.surfaces = d.surfaces[:len(effective)]
	}

	next := make([]*x11.Surface, 0, len(effective))
	for i, mon := range effective {
		var s *x11.Surface
		if i < len(d.surfaces) && d.surfaces[i].Valid() {
			s = d.surfaces[i]
			if s.X != mon.X || s.Y != mon.Y || s.Width != mon.Width || s.Height != mon.Height {
				if err := d.conn.ResizeSurface(s, mon); err != nil {
					logger.Warn("resize failed, recreating surface", "surface", i, "err", err)
					d.sup.Terminate(i)
					d.conn.DestroySurface(s)
					s = nil
				}
			}
		} else if i < len(d.surfaces) {
			// Stale handle; its player renders into nothing.
			d.sup.Terminate(i)
		}

		if s == nil {
			created, err := d.conn.CreateSurface(mon, i)
			if created == nil {
				logger.Error("failed to create surface", "monitor", mon.Name, "err", err)
				next = append(next, nil)
				continue
			}
			if err != nil {
				logger.Warn("surface created without input transparency", "monitor", mon.Name, "err", err)
			}
			created.NeedsRestart = true
			s = created
		}
		s.Monitor = i
		next = append(next, s)
	}

	d.monitors = effective
	d.surfaces = next
	d.sup.Resize(len(next))
	d.trans.Resize(len(next))

	if d.cfg.PerMonitorContent && len(d.playlists) != len(next) {
		if err := d.buildPlaylists(len(next)); err != nil {
			logger.Error("failed to rebuild per-monitor playlists", "err", err)
		}
	}
	d.lastAdvance = resizeTimes(d.lastAdvance, len(next), now)

	for i, s := range d.surfaces {
		if !s.Valid() {
			continue
		}
		d.conn.ApplyDesktopHints(s, d.env)
		if s.NeedsRestart || d.sup.Primary(i) == nil {
			d.respawn(i)
		}
		d.conn.LowerSurface(s)
	}
	d.conn.Sync()
}

// resizeTimes grows or shrinks the per-surface advance timestamps,
// seeding new slots with now.
func resizeTimes(ts []time.Time, n int, now time.Time) []time.Time {
	next := make([]time.Time, n)
	copy(next, ts)
	for i := range next {
		if next[i].IsZero() {
			next[i] = now
		}
	}
	return next
}
