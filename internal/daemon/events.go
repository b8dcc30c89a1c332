package daemon

import (
	"time"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/motionwall/internal/logger"
)

// drainEvents empties a bounded slice of the X event queue. Consecutive
// read errors past the limit stop the loop; one good read resets the
// counter.
func (d *Daemon) drainEvents() {
	for i := 0; i < maxEventsPerTick; i++ {
		ev, err := d.conn.PollEvent()
		if err != nil {
			d.eventErrors++
			logger.Warn("display event error", "err", err, "consecutive", d.eventErrors)
			if d.eventErrors >= maxEventErrors {
				logger.Error("too many consecutive display errors, treating connection as dead")
				d.running = false
			}
			return
		}
		if ev == nil {
			d.eventErrors = 0
			return
		}
		d.eventErrors = 0
		d.handleEvent(ev)
	}
}

func (d *Daemon) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case randr.ScreenChangeNotifyEvent:
		d.markTopologyDirty("screen change notification")

	case xproto.DestroyNotifyEvent:
		// A surface killed out from under us (xkill, misbehaving WM).
		// Invalidate the handle and rebuild on the next reconcile.
		for i, s := range d.surfaces {
			if s.Valid() && s.Window == e.Window {
				logger.Warn("surface destroyed externally", "surface", i)
				s.Window = 0
				d.markTopologyDirty("surface destroyed")
			}
		}

	case xproto.ExposeEvent:
		d.lowerAll()

	case xproto.VisibilityNotifyEvent:
		// Something restacked over us; push back to the bottom.
		d.lowerAll()
	}
}

func (d *Daemon) markTopologyDirty(reason string) {
	if d.topologyDirty {
		return
	}
	d.topologyDirty = true
	d.dirtySince = time.Now()
	logger.Debug("topology marked dirty", "reason", reason)
}

func (d *Daemon) lowerAll() {
	for _, s := range d.surfaces {
		d.conn.LowerSurface(s)
	}
}
