package daemon

import (
	"time"

	"github.com/1broseidon/motionwall/internal/logger"
)

// schedule advances content when an item's display time is up. While
// paused the timers are pushed forward so items get their full time once
// playback resumes.
func (d *Daemon) schedule(now time.Time) {
	if d.paused {
		for i := range d.lastAdvance {
			d.lastAdvance[i] = now
		}
		return
	}

	if d.cfg.PerMonitorContent {
		for i := range d.surfaces {
			if d.playlistFor(i).Due(now, d.lastAdvance[i]) {
				d.advanceSurface(i, now)
			}
		}
		return
	}

	if len(d.lastAdvance) > 0 && d.playlists[0].Due(now, d.lastAdvance[0]) {
		d.advanceAll(now)
	}
}

// nextDueAt returns the earliest upcoming advance, for sleep sizing.
// Zero means nothing is scheduled.
func (d *Daemon) nextDueAt(now time.Time) time.Time {
	if d.paused {
		return time.Time{}
	}
	var next time.Time
	for i := range d.lastAdvance {
		pl := d.playlistFor(i)
		if pl.Len() <= 1 || pl.Duration <= 0 {
			continue
		}
		due := d.lastAdvance[i].Add(pl.Duration)
		if next.IsZero() || due.Before(next) {
			next = due
		}
	}
	return next
}

// forceAdvance is the IPC "next" command: advance immediately regardless
// of remaining display time.
func (d *Daemon) forceAdvance(now time.Time) {
	if d.cfg.PerMonitorContent {
		for i := range d.surfaces {
			d.advanceSurface(i, now)
		}
		return
	}
	d.advanceAll(now)
}

// advanceAll moves the shared playlist one step and swaps every surface
// to the new item.
func (d *Daemon) advanceAll(now time.Time) {
	pl := d.playlists[0]
	pl.Advance(d.rng)
	logger.Info("advancing content", "item", pl.CurrentItem())

	if d.trans.Enabled() {
		for i := range d.surfaces {
			if !d.surfaces[i].Valid() {
				continue
			}
			opts := d.spawnOptions(i)
			if err := d.trans.Preload(i, opts, d.debug); err != nil {
				logger.Warn("preload failed", "surface", i, "err", err)
			}
		}
		time.Sleep(settleDelay)
		for i := range d.surfaces {
			if !d.surfaces[i].Valid() {
				continue
			}
			if !d.trans.Commit(i, d.sup) {
				d.respawn(i)
			}
		}
	} else {
		for i := range d.surfaces {
			d.sup.Terminate(i)
		}
		time.Sleep(settleDelay)
		for i := range d.surfaces {
			d.respawn(i)
		}
	}

	for i := range d.lastAdvance {
		d.lastAdvance[i] = now
	}
}

// advanceSurface moves one surface's playlist and swaps just that
// surface, for per-monitor content.
func (d *Daemon) advanceSurface(idx int, now time.Time) {
	pl := d.playlistFor(idx)
	pl.Advance(d.rng)
	logger.Info("advancing content", "surface", idx, "item", pl.CurrentItem())

	if d.surfaces[idx].Valid() && d.trans.Enabled() {
		opts := d.spawnOptions(idx)
		if err := d.trans.Preload(idx, opts, d.debug); err == nil {
			time.Sleep(settleDelay)
			if d.trans.Commit(idx, d.sup) {
				d.lastAdvance[idx] = now
				return
			}
		} else {
			logger.Warn("preload failed", "surface", idx, "err", err)
		}
	}

	d.sup.Terminate(idx)
	time.Sleep(settleDelay)
	d.respawn(idx)
	d.lastAdvance[idx] = now
}
